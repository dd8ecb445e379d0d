package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const maxWidth = 80

type FlagGroup struct {
	Name  string
	Flags []*pflag.Flag
}

// UsageError marks a command-line mistake, as opposed to a failure while running.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// StripInvalidFlag extracts the offending option from a pflag parse error.
func StripInvalidFlag(err error) string {
	var option string
	switch {
	case strings.Contains(err.Error(), "unknown shorthand flag"):
		parts := strings.Split(err.Error(), "'")
		if len(parts) > 1 {
			option = "-" + parts[1]
		}
	case strings.Contains(err.Error(), "unknown flag"):
		parts := strings.Split(err.Error(), " ")
		if len(parts) > 2 {
			option = parts[2]
		}
	default:
		option = err.Error()
	}

	return option
}

// FlagErrorFunc turns pflag errors into UsageErrors with a short hint.
func FlagErrorFunc(cmd *cobra.Command, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "unknown") {
		msg = "unknown option: " + StripInvalidFlag(err)
	}
	return &UsageError{Err: fmt.Errorf("%s\n\n%s", msg, FormatSynopsis(cmd))}
}

// Group collects the named flags of cmd in the given order.
func Group(cmd *cobra.Command, name string, flagNames ...string) FlagGroup {
	group := FlagGroup{Name: name}
	for _, n := range flagNames {
		if f := cmd.Flags().Lookup(n); f != nil {
			group.Flags = append(group.Flags, f)
		}
	}
	return group
}

// FormatSynopsis renders the one-line usage, wrapped at 80 columns without
// splitting a flag group. Required flags come first, unbracketed.
func FormatSynopsis(cmd *cobra.Command) string {
	usage := fmt.Sprintf("usage: %s", cmd.CommandPath())
	padding := strings.Repeat(" ", len(usage)+1)

	var required, optional []string
	cmd.LocalFlags().VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden {
			return
		}
		token := "--" + flag.Name
		if flag.Value.Type() != "bool" {
			token += " <" + placeholder(flag) + ">"
		}

		if isRequired(flag) {
			required = append(required, token)
			return
		}
		if flag.Shorthand != "" {
			optional = append(optional, fmt.Sprintf("[-%s | %s]", flag.Shorthand, token))
		} else {
			optional = append(optional, "["+token+"]")
		}
	})

	currentLine := usage
	var lines []string
	for _, group := range append(required, optional...) {
		if len(currentLine)+len(group)+1 > maxWidth && currentLine != usage {
			lines = append(lines, currentLine)
			currentLine = padding + group
			continue
		}
		currentLine += " " + group
	}
	lines = append(lines, currentLine)

	return strings.Join(lines, "\n")
}

// FormatUsage renders the synopsis followed by each flag group.
func FormatUsage(cmd *cobra.Command, groups []FlagGroup) string {
	var builder strings.Builder

	builder.WriteString(FormatSynopsis(cmd))
	builder.WriteString("\n\n")

	for _, group := range groups {
		builder.WriteString(group.Name + ":\n")
		for _, flag := range group.Flags {
			if flag.Hidden {
				continue
			}

			line := "    "
			if flag.Shorthand != "" {
				line += fmt.Sprintf("-%s, ", flag.Shorthand)
			}
			line += fmt.Sprintf("--%s", flag.Name)

			if flag.Value.Type() != "bool" {
				line += fmt.Sprintf(" <%s>", placeholder(flag))
			}

			// Align descriptions at 40 characters
			if len(line) < 40 {
				line += strings.Repeat(" ", 40-len(line))
			} else {
				line += "\n    " + strings.Repeat(" ", 36)
			}

			_, usage := pflag.UnquoteUsage(flag)
			line += usage
			if flag.DefValue != "" && flag.DefValue != "false" && flag.DefValue != "0" {
				line += fmt.Sprintf(" (default %q)", flag.DefValue)
			}
			builder.WriteString(line + "\n")
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

func placeholder(flag *pflag.Flag) string {
	name, _ := pflag.UnquoteUsage(flag)
	if name == "" {
		return flag.Name
	}
	return name
}

func isRequired(flag *pflag.Flag) bool {
	values, ok := flag.Annotations[cobra.BashCompOneRequiredFlag]
	return ok && len(values) > 0 && values[0] == "true"
}
