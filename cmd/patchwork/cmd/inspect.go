package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-drift/patchwork/pkg/session"
)

func init() {
	RegisterCommand(&Command{
		Name:  "inspect",
		Short: "Print a running session's tree",
		Long: `Fetch the live tree from a session inspector and print it as an outline.

Components show their name, dirty (*) and stale (~) flags. Controls show
their props as the client holds them.

Flags:
  --depth N   Stop N levels below the root
  --json      Print the raw JSON instead`,
		Usage: "patchwork inspect <host:port> [--depth N] [--json]",
		Run:   runInspect,
	})
	RegisterCommand(&Command{
		Name:  "health",
		Short: "Check a session inspector",
		Long:  `Print the name, protocol and counters reported by a session inspector.`,
		Usage: "patchwork health <host:port>",
		Run:   runHealth,
	})
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func fetch(addr, path string) ([]byte, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	resp, err := httpClient.Get(strings.TrimSuffix(addr, "/") + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func runInspect(args []string) error {
	var addr string
	depth := 0
	raw := false
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--json":
			raw = true
		case arg == "--depth":
			if i+1 >= len(args) {
				return fmt.Errorf("--depth requires a number")
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil || n <= 0 {
				return fmt.Errorf("--depth must be a positive integer (got %q)", args[i+1])
			}
			depth = n
			i++
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag %q", arg)
		default:
			addr = arg
		}
	}
	if addr == "" {
		return fmt.Errorf("inspector address is required\n\nUsage: patchwork inspect <host:port>")
	}

	path := "/tree"
	if depth > 0 {
		path += "?depth=" + strconv.Itoa(depth)
	}
	body, err := fetch(addr, path)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", addr, err)
	}
	if raw {
		_, err := stdout.Write(body)
		return err
	}
	var root session.TreeNode
	if err := json.Unmarshal(body, &root); err != nil {
		return fmt.Errorf("inspect %s: %w", addr, err)
	}
	writeOutline(stdout, root)
	return nil
}

func writeOutline(w io.Writer, n session.TreeNode) {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", n.Depth))
	if n.Name != "" {
		sb.WriteString(n.Name)
	} else {
		sb.WriteString(n.Kind)
	}
	if n.Key != nil {
		fmt.Fprintf(&sb, "#%v", n.Key)
	}
	fmt.Fprintf(&sb, " (%d)", n.ID)
	if n.Dirty {
		sb.WriteString(" *")
	}
	if n.Stale {
		sb.WriteString(" ~")
	}
	if len(n.Props) > 0 {
		sb.WriteString(" {")
		for i, k := range slices.Sorted(maps.Keys(n.Props)) {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s: %v", k, n.Props[k])
		}
		sb.WriteString("}")
	}
	fmt.Fprintln(w, sb.String())
	for _, child := range n.Children {
		writeOutline(w, child)
	}
}

func runHealth(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("inspector address is required\n\nUsage: patchwork health <host:port>")
	}
	body, err := fetch(args[0], "/health")
	if err != nil {
		return fmt.Errorf("health %s: %w", args[0], err)
	}
	var health struct {
		Name     string `json:"name"`
		Protocol string `json:"protocol"`
		Nodes    int    `json:"nodes"`
		Dirty    int    `json:"dirty"`
		Effects  int    `json:"effects"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Session: %s (protocol %s)\n", health.Name, health.Protocol)
	fmt.Fprintf(stdout, "  nodes:   %d\n", health.Nodes)
	fmt.Fprintf(stdout, "  dirty:   %d\n", health.Dirty)
	fmt.Fprintf(stdout, "  effects: %d\n", health.Effects)
	return nil
}
