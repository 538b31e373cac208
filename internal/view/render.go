// Package view renders pager and sign-in state for the terminal.
package view

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joshsymonds/albumlens/internal/album"
	"github.com/joshsymonds/albumlens/internal/auth"
)

const (
	coverWidth        = 400
	coverHeight       = 300
	credentialsURL    = "https://console.cloud.google.com/apis/credentials"
	consentScreenURL  = "https://console.cloud.google.com/apis/credentials/consent"
	titleDisplayLimit = 60
	defaultListenHint = "http://localhost:8085"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	albumStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	linkStyle    = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("75"))
)

// RenderAlbums lists the accumulated albums.
func RenderAlbums(state album.State) string {
	var b strings.Builder
	if len(state.Albums) == 0 {
		b.WriteString(mutedStyle.Render("No albums found."))
		b.WriteString("\n")
		return b.String()
	}
	for _, a := range state.Albums {
		fmt.Fprintf(&b, "%s %s\n",
			albumStyle.Render(truncate(a.DisplayTitle(), titleDisplayLimit)),
			mutedStyle.Render(fmt.Sprintf("(%s items)", a.ItemCount())))
		if a.ProductURL != "" {
			fmt.Fprintf(&b, "  %s\n", linkStyle.Render(a.ProductURL))
		}
	}
	return b.String()
}

// RenderFailure shows the error surface for a failed load.
func RenderFailure(f *album.Failure) string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	switch f.Kind {
	case album.OutcomeSetupRequired:
		b.WriteString(warningStyle.Render("Action Required: Enable the Google Photos API"))
		b.WriteString("\n\n")
		b.WriteString("To view your albums, the \"Photos Library API\" must be enabled in your Google Cloud project.\n")
		b.WriteString("This is a one-time setup step.\n\n")
		fmt.Fprintf(&b, "  %s\n\n", linkStyle.Render(f.Hint))
		b.WriteString(mutedStyle.Render("After enabling the API, log out and sign back in. It may take a minute to take effect."))
		b.WriteString("\n")
	default:
		b.WriteString(errorStyle.Render("An Error Occurred"))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "%s\n", f.Message)
		if f.Hint != "" {
			fmt.Fprintf(&b, "%s\n", mutedStyle.Render(f.Hint))
		}
	}
	return b.String()
}

// RenderLoginError explains a sign-in failure with the steps that fix it.
func RenderLoginError(err error) string {
	var b strings.Builder
	switch auth.KindOf(err) {
	case auth.KindConfiguration:
		b.WriteString(errorStyle.Render("Configuration Error: Google Client ID is missing!"))
		b.WriteString("\n\n")
		b.WriteString("Create an OAuth 2.0 Client ID and pass it with -client-id or ALBUMLENS_CLIENT_ID:\n")
		fmt.Fprintf(&b, "  1. Open %s\n", linkStyle.Render(credentialsURL))
		b.WriteString("  2. Create credentials > OAuth client ID > Web application.\n")
		fmt.Fprintf(&b, "  3. Add %s to Authorized JavaScript origins and\n", defaultListenHint)
		fmt.Fprintf(&b, "     %s/oauth2callback to Authorized redirect URIs.\n", defaultListenHint)
		b.WriteString("  4. Copy the new Client ID.\n")
	case auth.KindPopup:
		b.WriteString(errorStyle.Render("Authentication Failed: Let's Troubleshoot"))
		b.WriteString("\n\n")
		b.WriteString("The sign-in window closed unexpectedly. Likely causes:\n")
		fmt.Fprintf(&b, "  1. The redirect URI does not match the one registered at %s\n", linkStyle.Render(credentialsURL))
		fmt.Fprintf(&b, "  2. The consent screen is in Testing and your account is not a test user: %s\n", linkStyle.Render(consentScreenURL))
		b.WriteString("  3. A browser extension or cookie setting blocked the sign-in. Try a private window.\n")
		b.WriteString(mutedStyle.Render("After changing anything in Google Cloud, wait a minute and try again."))
		b.WriteString("\n")
	case auth.KindDenied:
		fmt.Fprintf(&b, "%s\n", errorStyle.Render(err.Error()))
		b.WriteString("Please check your Client ID configuration.\n")
	default:
		b.WriteString(errorStyle.Render("An unexpected error occurred during sign-in. Please try again."))
		b.WriteString("\n")
	}
	return b.String()
}

// PrintAlbums writes a plain listing of state to w.
func PrintAlbums(state album.State, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}
	var b strings.Builder
	if state.Failure != nil {
		fmt.Fprintf(&b, "albumlens: %s\n", state.Failure.Message)
		if state.Failure.Hint != "" {
			fmt.Fprintf(&b, "  %s\n", state.Failure.Hint)
		}
	}
	fmt.Fprintf(&b, "albumlens: %d albums\n", len(state.Albums))
	for _, a := range state.Albums {
		fmt.Fprintf(&b, "  %-40s %6s  %s\n", truncate(a.DisplayTitle(), 40), a.ItemCount(), a.ProductURL)
		if cover := a.CoverURL(coverWidth, coverHeight); cover != "" {
			fmt.Fprintf(&b, "  %-40s         %s\n", "", cover)
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write album listing: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
