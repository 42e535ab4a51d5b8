package audioswitch

import (
	"fmt"
	"io"
	"strconv"
)

// CommandKind is the single action a run performs
type CommandKind int

const (
	CommandHelp CommandKind = iota
	CommandList
	CommandNext
	CommandSelect
)

// HelpText is printed for help and for anything that isn't a valid command
const HelpText = "Default sound device switcher.\n" +
	"-n              select next\n" +
	"<index>         select device number <index>\n" +
	"-l              list all devices\n"

// alternative spellings accepted as positional arguments
const (
	altNextArg = "/n"
	altListArg = "/l"
)

// Options holds what was found on the command line
type Options struct {
	Next bool
	List bool
	Args []string
}

// Command is a resolved invocation. Index is only meaningful for CommandSelect
type Command struct {
	Kind  CommandKind
	Index int
}

func (c Command) String() string {
	switch c.Kind {
	case CommandList:
		return "list"
	case CommandNext:
		return "next"
	case CommandSelect:
		return fmt.Sprintf("select(%d)", c.Index)
	default:
		return "help"
	}
}

// ResolveCommand turns parsed options into exactly one command.
// Anything ambiguous or unrecognized resolves to help
func ResolveCommand(opts Options) Command {
	forms := len(opts.Args)
	if opts.Next {
		forms++
	}
	if opts.List {
		forms++
	}

	if forms != 1 {
		return Command{Kind: CommandHelp}
	}

	switch {
	case opts.Next:
		return Command{Kind: CommandNext}
	case opts.List:
		return Command{Kind: CommandList}
	}

	arg := opts.Args[0]
	switch arg {
	case altNextArg:
		return Command{Kind: CommandNext}
	case altListArg:
		return Command{Kind: CommandList}
	}

	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return Command{Kind: CommandHelp}
	}

	return Command{Kind: CommandSelect, Index: index}
}

// Run performs cmd against the switcher, writing any listing to w
func (s *Switcher) Run(cmd Command, w io.Writer) error {
	s.logger.Debugw("Running command", "command", cmd)

	switch cmd.Kind {
	case CommandList:
		return s.List(w)
	case CommandNext:
		return s.SelectNext()
	case CommandSelect:
		return s.SelectIndex(cmd.Index)
	default:
		_, err := io.WriteString(w, HelpText)
		return err
	}
}
