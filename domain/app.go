package domain

// AppName is the user-facing application name.
const AppName = "InstaTerm"

// DisplayAppTitle returns the title shown in the TUI header.
func DisplayAppTitle() string {
	return "📷 " + AppName
}
