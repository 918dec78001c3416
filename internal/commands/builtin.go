package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// maxPathCandidates caps the completions offered for a path argument.
const maxPathCandidates = 50

// Host is the viewer state the built-in commands act on.
type Host interface {
	OpenFile(path string) error
	CloseFile()
	AdapterName() string
	ParserNames() []string
	ParserName() string
	SelectParser(i int) error
	SelectParserByName(name string) error
	FileDialogFilter() string
}

// RegisterBuiltins adds every built-in command to r. recent may be nil when
// no history is kept.
func RegisterBuiltins(r *Registry, host Host, recent func() ([]string, error)) error {
	cmds := []SlashCommand{
		NewQuitCommand(),
		NewExitCommand(),
		NewOpenCommand(host),
		NewCloseCommand(host),
		NewParserCommand(host),
		NewSettingsCommand(),
		NewFormatsCommand(host),
		NewHelpCommand(r),
	}
	if recent != nil {
		cmds = append(cmds, NewRecentCommand(recent))
	}
	for _, c := range cmds {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// --- quit ---

type quitCommand struct{}

// NewQuitCommand creates a command that requests the host to terminate.
func NewQuitCommand() SlashCommand {
	return &quitCommand{}
}

func (c *quitCommand) Name() string        { return "quit" }
func (c *quitCommand) Description() string { return "Quit the viewer" }
func (c *quitCommand) Usage() string       { return "" }

func (c *quitCommand) Complete(_ context.Context, _ []string) []Candidate {
	return nil
}

func (c *quitCommand) Execute(_ context.Context, _ []string) (Result, error) {
	return Result{Action: ActionQuit}, nil
}

// --- exit ---

type exitCommand struct{ quitCommand }

// NewExitCommand creates a command that behaves identically to quit.
func NewExitCommand() SlashCommand {
	return &exitCommand{}
}

func (c *exitCommand) Name() string        { return "exit" }
func (c *exitCommand) Description() string { return "Exit the viewer" }

// --- open ---

type openCommand struct {
	host Host
}

// NewOpenCommand creates a command that opens a data file. Its argument
// completes against the file system.
func NewOpenCommand(host Host) SlashCommand {
	return &openCommand{host: host}
}

func (c *openCommand) Name() string        { return "open" }
func (c *openCommand) Description() string { return "Open a data file" }
func (c *openCommand) Usage() string       { return "<path>" }

func (c *openCommand) Complete(_ context.Context, args []string) []Candidate {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}
	return completePath(prefix)
}

func (c *openCommand) Execute(_ context.Context, args []string) (Result, error) {
	if len(args) == 0 {
		return Result{}, fmt.Errorf("file path is required")
	}
	if err := c.host.OpenFile(args[0]); err != nil {
		return Result{Action: ActionReload}, err
	}
	return Result{
		Output: fmt.Sprintf("Opened %s with %s", args[0], c.host.AdapterName()),
		Action: ActionReload,
	}, nil
}

// completePath lists directory entries starting with the base name of
// prefix. Directories end with a separator. Hidden entries are shown only
// when the prefix asks for them.
func completePath(prefix string) []Candidate {
	dir, base := filepath.Split(prefix)
	readDir := dir
	if readDir == "" {
		readDir = "."
	}
	entries, err := os.ReadDir(readDir)
	if err != nil {
		return nil
	}

	var out []Candidate
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		c := Candidate{Value: dir + name}
		if e.IsDir() {
			c.Value += string(filepath.Separator)
			c.Description = "directory"
		}
		out = append(out, c)
		if len(out) == maxPathCandidates {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// --- close ---

type closeCommand struct {
	host Host
}

// NewCloseCommand creates a command that closes the open file.
func NewCloseCommand(host Host) SlashCommand {
	return &closeCommand{host: host}
}

func (c *closeCommand) Name() string        { return "close" }
func (c *closeCommand) Description() string { return "Close the open file" }
func (c *closeCommand) Usage() string       { return "" }

func (c *closeCommand) Complete(_ context.Context, _ []string) []Candidate {
	return nil
}

func (c *closeCommand) Execute(_ context.Context, _ []string) (Result, error) {
	c.host.CloseFile()
	return Result{Action: ActionReload}, nil
}

// --- parser ---

type parserCommand struct {
	host Host
}

// NewParserCommand creates a command that lists parsers or selects one by
// name or by 1-based position.
func NewParserCommand(host Host) SlashCommand {
	return &parserCommand{host: host}
}

func (c *parserCommand) Name() string        { return "parser" }
func (c *parserCommand) Description() string { return "Show or switch the data parser" }
func (c *parserCommand) Usage() string       { return "[name|number]" }

func (c *parserCommand) Complete(_ context.Context, args []string) []Candidate {
	prefix := ""
	if len(args) > 0 {
		prefix = strings.ToLower(args[0])
	}
	var out []Candidate
	for i, name := range c.host.ParserNames() {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			out = append(out, Candidate{Value: name, Description: strconv.Itoa(i + 1)})
		}
	}
	return out
}

func (c *parserCommand) Execute(_ context.Context, args []string) (Result, error) {
	if len(args) == 0 {
		var b strings.Builder
		b.WriteString("Parsers:\n")
		current := c.host.ParserName()
		for i, name := range c.host.ParserNames() {
			marker := " "
			if name == current {
				marker = "*"
			}
			fmt.Fprintf(&b, " %s %d. %s\n", marker, i+1, name)
		}
		return Result{Output: b.String()}, nil
	}

	var err error
	if n, convErr := strconv.Atoi(args[0]); convErr == nil {
		err = c.host.SelectParser(n - 1)
	} else {
		err = c.host.SelectParserByName(args[0])
	}
	if err != nil {
		return Result{}, err
	}
	return Result{
		Output: fmt.Sprintf("Parser switched to %s", c.host.ParserName()),
		Action: ActionReload,
	}, nil
}

// --- settings ---

type settingsCommand struct{}

// NewSettingsCommand creates a command that requests the parser settings
// form.
func NewSettingsCommand() SlashCommand {
	return &settingsCommand{}
}

func (c *settingsCommand) Name() string        { return "settings" }
func (c *settingsCommand) Description() string { return "Edit the parser settings" }
func (c *settingsCommand) Usage() string       { return "" }

func (c *settingsCommand) Complete(_ context.Context, _ []string) []Candidate {
	return nil
}

func (c *settingsCommand) Execute(_ context.Context, _ []string) (Result, error) {
	return Result{Action: ActionOpenSettings}, nil
}

// --- formats ---

type formatsCommand struct {
	host Host
}

// NewFormatsCommand creates a command that lists the openable formats.
func NewFormatsCommand(host Host) SlashCommand {
	return &formatsCommand{host: host}
}

func (c *formatsCommand) Name() string        { return "formats" }
func (c *formatsCommand) Description() string { return "List supported file formats" }
func (c *formatsCommand) Usage() string       { return "" }

func (c *formatsCommand) Complete(_ context.Context, _ []string) []Candidate {
	return nil
}

func (c *formatsCommand) Execute(_ context.Context, _ []string) (Result, error) {
	filters := strings.Split(c.host.FileDialogFilter(), ";;")
	return Result{Output: "Formats:\n  " + strings.Join(filters, "\n  ") + "\n"}, nil
}

// --- recent ---

type recentCommand struct {
	list func() ([]string, error)
}

// NewRecentCommand creates a command that lists recently opened files.
func NewRecentCommand(list func() ([]string, error)) SlashCommand {
	return &recentCommand{list: list}
}

func (c *recentCommand) Name() string        { return "recent" }
func (c *recentCommand) Description() string { return "List recently opened files" }
func (c *recentCommand) Usage() string       { return "" }

func (c *recentCommand) Complete(_ context.Context, _ []string) []Candidate {
	return nil
}

func (c *recentCommand) Execute(_ context.Context, _ []string) (Result, error) {
	paths, err := c.list()
	if err != nil {
		return Result{}, fmt.Errorf("list recent files: %w", err)
	}
	if len(paths) == 0 {
		return Result{Output: "No recent files."}, nil
	}
	var b strings.Builder
	b.WriteString("Recent files:\n")
	for _, p := range paths {
		fmt.Fprintf(&b, "  %s\n", p)
	}
	return Result{Output: b.String()}, nil
}

// --- help ---

type helpCommand struct {
	registry *Registry
}

// NewHelpCommand creates a command that lists all registered commands
// with their descriptions.
func NewHelpCommand(registry *Registry) SlashCommand {
	return &helpCommand{registry: registry}
}

func (c *helpCommand) Name() string        { return "help" }
func (c *helpCommand) Description() string { return "Show available commands" }
func (c *helpCommand) Usage() string       { return "" }

func (c *helpCommand) Complete(_ context.Context, _ []string) []Candidate {
	return nil
}

func (c *helpCommand) Execute(_ context.Context, _ []string) (Result, error) {
	cmds := c.registry.All()
	if len(cmds) == 0 {
		return Result{Output: "No commands available."}, nil
	}

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, cmd := range cmds {
		usage := "/" + cmd.Name()
		if u := cmd.Usage(); u != "" {
			usage += " " + u
		}
		fmt.Fprintf(&b, "  %-24s %s\n", usage, cmd.Description())
	}
	return Result{Output: b.String()}, nil
}
