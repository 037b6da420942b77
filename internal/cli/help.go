package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpDescStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accentColor).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// StyledHelpPrinter creates a help printer with Lipgloss styling. It shows
// the selected command's arguments and flags, or the command list at the
// top level.
func StyledHelpPrinter(_ kong.HelpOptions) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		node := ctx.Model.Node
		if selected := ctx.Selected(); selected != nil {
			node = selected
		}

		var sb strings.Builder

		sb.WriteString(TitleStyle.Render("voicegraph"))
		sb.WriteString("\n")

		desc := ctx.Model.Help
		if node != ctx.Model.Node && node.Help != "" {
			desc = node.Help
		}

		if desc != "" {
			sb.WriteString(helpDescStyle.Render(desc))
			sb.WriteString("\n")
		}

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(usage(ctx.Model.Name, node, ctx.Model.Node))
		sb.WriteString("\n")

		writeSection(&sb, "Commands:", helpArgStyle, getCommands(node))
		writeSection(&sb, "Arguments:", helpArgStyle, getArguments(node))
		writeSection(&sb, "Flags:", helpFlagStyle, getFlags(node, ctx.Model.Node))

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())

		return nil
	}
}

type entry struct {
	name       string
	help       string
	defaultVal string
}

func writeSection(sb *strings.Builder, title string, style lipgloss.Style, entries []entry) {
	if len(entries) == 0 {
		return
	}

	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")

	for _, e := range entries {
		sb.WriteString("  ")
		sb.WriteString(style.Render(e.name))

		if e.help != "" {
			sb.WriteString("  ")
			sb.WriteString(e.help)
		}

		if e.defaultVal != "" {
			sb.WriteString(" ")
			sb.WriteString(helpDefaultStyle.Render("(default: " + e.defaultVal + ")"))
		}

		sb.WriteString("\n")
	}
}

func usage(app string, node, root *kong.Node) string {
	if node == root {
		return app + " <command> [flags]"
	}

	line := app + " " + node.Name + " [flags]"
	for _, arg := range node.Positional {
		line += " " + arg.Summary()
	}

	return line
}

func getCommands(node *kong.Node) []entry {
	var cmds []entry

	for _, child := range node.Children {
		if child.Hidden || child.Type != kong.CommandNode {
			continue
		}

		cmds = append(cmds, entry{name: child.Name, help: child.Help})
	}

	return cmds
}

func getArguments(node *kong.Node) []entry {
	var args []entry

	for _, arg := range node.Positional {
		args = append(args, entry{name: arg.Summary(), help: arg.Help})
	}

	return args
}

func getFlags(node, root *kong.Node) []entry {
	flags := []entry{{name: "-h, --help", help: "Show context-sensitive help."}}

	all := node.Flags
	if node != root {
		all = append(append([]*kong.Flag(nil), root.Flags...), node.Flags...)
	}

	for _, f := range all {
		if f.Name == "help" || f.Hidden {
			continue
		}

		name := "--" + f.Name
		if f.Short != 0 {
			name = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		}

		if !f.IsBool() && f.PlaceHolder != "" {
			name += "=" + strings.ToUpper(f.PlaceHolder)
		}

		flags = append(flags, entry{name: name, help: f.Help, defaultVal: f.Default})
	}

	return flags
}
