// Package params implements the module-level parameter surface and debug
// command dispatcher the host queries via the factory module handle: the
// only exposed parameter is streamBufSizeThreshold, and the module also
// answers a help command.
package params

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/synthcore/synthcore/config"
)

// Store is the mutable module-parameter surface backing a running module
// instance; it starts from config.Default() and is updated by SetConfig or
// individual SetParameter calls from the host.
type Store struct {
	cfg config.Config
}

func NewStore() *Store {
	return &Store{cfg: config.Default()}
}

func (s *Store) SetConfig(cfg config.Config) { s.cfg = cfg }
func (s *Store) Config() config.Config       { return s.cfg }

// commands maps a debug command name to its handler. Registered once at
// init; new debug commands are added here, not scattered across the
// package.
var commands map[string]func(*Store, []string) (string, error)

func init() {
	commands = map[string]func(*Store, []string) (string, error){
		"help": func(s *Store, args []string) (string, error) {
			names := make([]string, 0, len(commands))
			for name := range commands {
				names = append(names, name)
			}
			sort.Strings(names)
			out := ""
			for _, n := range names {
				out += n + "\n"
			}
			return out, nil
		},
		"get": func(s *Store, args []string) (string, error) {
			if len(args) != 1 {
				return "", fmt.Errorf("get: expected 1 argument, got %d", len(args))
			}
			switch args[0] {
			case "streamBufSizeThreshold":
				return strconv.Itoa(s.cfg.StreamBufSizeThreshold), nil
			default:
				return "", fmt.Errorf("get: unknown parameter %q", args[0])
			}
		},
		"set": func(s *Store, args []string) (string, error) {
			if len(args) != 2 {
				return "", fmt.Errorf("set: expected 2 arguments, got %d", len(args))
			}
			switch args[0] {
			case "streamBufSizeThreshold":
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return "", fmt.Errorf("set: invalid integer %q", args[1])
				}
				s.cfg.StreamBufSizeThreshold = n
				return "", nil
			default:
				return "", fmt.Errorf("set: unknown parameter %q", args[0])
			}
		},
	}
}

// Dispatch runs a named debug command against this store's state.
func (s *Store) Dispatch(name string, args []string) (string, error) {
	cmd, ok := commands[name]
	if !ok {
		return "", fmt.Errorf("unknown debug command %q", name)
	}
	return cmd(s, args)
}
