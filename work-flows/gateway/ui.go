package gateway

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

func PrintHeader(w io.Writer, title, subtitle string) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	const width = 62
	cyan.Fprintln(w, "╔"+strings.Repeat("═", width)+"╗")
	cyan.Fprintln(w, "║"+center(title, width)+"║")
	cyan.Fprintln(w, "║"+center(subtitle, width)+"║")
	cyan.Fprintln(w, "╚"+strings.Repeat("═", width)+"╝")
	yellow.Fprintln(w)
}

func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

type helpEntry struct {
	command string
	summary string
}

var helpSections = []struct {
	title   string
	entries []helpEntry
}{
	{"Account", []helpEntry{
		{"/login", "Log in with email and password"},
		{"/register", "Create an account"},
		{"/forgot", "Request a password reset link"},
		{"/reset", "Set a new password with a reset token"},
		{"/logout", "Log out"},
	}},
	{"Chat", []helpEntry{
		{"/new", "Start a new conversation"},
		{"/history", "List saved conversations"},
		{"/open <n|id>", "Open a saved conversation"},
		{"/resume", "Reopen the last conversation"},
		{"/delete <n>", "Delete a saved conversation"},
		{"/translate", "Translate the last reply into the current language"},
		{"/export", "Save the conversation as JSON"},
		{"/stats", "Show message counts"},
		{"/legacy", "Show the old message log"},
	}},
	{"Voice", []helpEntry{
		{"/listen", "Dictate a message, press Enter to send"},
		{"/speak", "Read the last reply aloud"},
		{"/stop", "Stop speaking"},
		{"/autospeak on|off", "Read replies aloud as they arrive"},
	}},
	{"Profile & settings", []helpEntry{
		{"/profile", "Show your profile"},
		{"/edit", "Edit your profile"},
		{"/password", "Change your password"},
		{"/delete-account", "Delete your account"},
		{"/lang [en|hi|pa]", "Show or change the language"},
	}},
	{"General", []helpEntry{
		{"/help", "Show this help message"},
		{"/quit", "Exit"},
	}},
}

func PrintHelp(w io.Writer) {
	yellow := color.New(color.FgYellow, color.Bold)
	cyan := color.New(color.FgCyan)
	white := color.New(color.FgWhite)
	green := color.New(color.FgGreen)

	yellow.Fprintln(w, "\n📖 Available Commands:")
	for _, section := range helpSections {
		cyan.Fprintf(w, "%s:\n", section.title)
		for _, e := range section.entries {
			white.Fprintf(w, "• %-18s %s\n", e.command, e.summary)
		}
	}
	green.Fprintln(w, "\nAny other text is sent to the assistant.")
}

func PrintPrompt(w io.Writer, label string) {
	blue := color.New(color.FgBlue, color.Bold)
	blue.Fprintf(w, "%s> ", label)
}

func PrintGoodbye(w io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Fprintln(w, message)
}

func printUserMessage(w io.Writer, content string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "You: %s\n", content)
}

func printAssistantMessage(w io.Writer, content string) {
	blue := color.New(color.FgBlue)
	blue.Fprintf(w, "AI: %s\n", content)
}

func printErrorMessage(w io.Writer, content string) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "AI: %s\n", content)
}

func printField(w io.Writer, label, value string) {
	cyan := color.New(color.FgCyan)
	cyan.Fprintf(w, "%s: ", label)
	fmt.Fprintln(w, value)
}
