package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rsxlab/rsx"
	"github.com/rsxlab/rsx/token"
)

func main() {
	root := &cobra.Command{
		Use:          "rsx",
		Short:        "rsx markup tooling",
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("debug", false, "log debugging information")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}
	root.AddCommand(cmdParse())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func cmdParse() *cobra.Command {
	var (
		flat            bool
		strict          bool
		noRecoverBlocks bool
		asJSON          bool
		topCount        int
	)
	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "parse markup files and print the node tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rsx.Defaults()
			cfg.FlatTree = flat
			cfg.RecoverInvalidBlocks = !noRecoverBlocks
			if cmd.Flags().Changed("top-level-count") {
				cfg.TopLevelCount = &topCount
			}
			failed := false
			for _, path := range args {
				if err := parseFile(cmd.OutOrStdout(), path, cfg, strict, asJSON); err != nil {
					slog.Error("parse failed", "file", path, "err", err)
					failed = true
				}
			}
			if failed {
				return fmt.Errorf("one or more files failed to parse")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flat, "flat", false, "emit the pre-order flattened node list")
	cmd.Flags().BoolVar(&strict, "strict", false, "stop at the first diagnostic")
	cmd.Flags().BoolVar(&noRecoverBlocks, "no-recover-blocks", false, "treat invalid code blocks as hard errors")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")
	cmd.Flags().IntVar(&topCount, "top-level-count", 0, "require an exact number of top-level nodes")
	return cmd
}

func parseFile(w io.Writer, path string, cfg *rsx.Config, strict, asJSON bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	src := string(data)

	var nodes []rsx.Node
	if strict {
		nodes, err = rsx.ParseString(src, cfg)
		if err != nil {
			return err
		}
	} else {
		res := rsx.ParseStringRecoverable(src, cfg)
		for _, d := range res.Diags {
			slog.Warn("diagnostic", "file", path, "kind", d.Kind, "err", d.Error())
			if ctx := rsx.ErrorContext(res.Nodes, d, token.SourceText(src)); ctx != "" {
				fmt.Fprintf(os.Stderr, "  near: %s\n", ctx)
			}
		}
		if res.State() == rsx.StateFailed {
			return fmt.Errorf("no tree could be built")
		}
		nodes = res.Nodes
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toJSON(nodes, token.SourceText(src)))
	}
	writeTree(w, nodes, 0, token.SourceText(src))
	return nil
}

type jsonNode struct {
	Type        string     `json:"type"`
	Name        string     `json:"name,omitempty"`
	Value       string     `json:"value,omitempty"`
	Attrs       []jsonAttr `json:"attrs,omitempty"`
	SelfClosing bool       `json:"selfClosing,omitempty"`
	Children    []jsonNode `json:"children,omitempty"`
	Line        int        `json:"line,omitempty"`
	Column      int        `json:"column,omitempty"`
}

type jsonAttr struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

func toJSON(nodes []rsx.Node, src token.Source) []jsonNode {
	var out []jsonNode
	for _, n := range nodes {
		span := n.Span()
		j := jsonNode{Type: n.Type().String(), Line: span.Line, Column: span.Column}
		switch t := n.(type) {
		case *rsx.Element:
			j.Name = t.Name().String()
			j.SelfClosing = t.OpenTag.SelfClosing
			for _, a := range t.Attrs() {
				j.Attrs = append(j.Attrs, toJSONAttr(a))
			}
			j.Children = toJSON(t.Children, src)
		case *rsx.Fragment:
			j.Children = toJSON(t.Children, src)
		case *rsx.Text:
			j.Value = t.Value
		case *rsx.RawText:
			j.Value = t.StringBest(src)
		case *rsx.Comment:
			j.Value = t.Value
		case *rsx.Doctype:
			j.Value = t.Value
		case *rsx.Block:
			j.Value = blockLabel(t)
		}
		out = append(out, j)
	}
	return out
}

func toJSONAttr(a rsx.Attr) jsonAttr {
	switch at := a.(type) {
	case *rsx.KeyedAttr:
		j := jsonAttr{Key: at.Key.String()}
		if at.Value != nil {
			j.Value = at.Value.Raw
		}
		return j
	case *rsx.DynAttr:
		return jsonAttr{Key: blockLabel(at.Block)}
	}
	return jsonAttr{}
}

func writeTree(w io.Writer, nodes []rsx.Node, depth int, src token.Source) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		switch t := n.(type) {
		case *rsx.Element:
			fmt.Fprintf(w, "%selement %s%s\n", indent, t.Name(), attrSuffix(t.Attrs()))
			writeTree(w, t.Children, depth+1, src)
		case *rsx.Fragment:
			fmt.Fprintf(w, "%sfragment\n", indent)
			writeTree(w, t.Children, depth+1, src)
		case *rsx.Text:
			fmt.Fprintf(w, "%stext %q\n", indent, t.Value)
		case *rsx.RawText:
			fmt.Fprintf(w, "%sraw-text %q\n", indent, t.StringBest(src))
		case *rsx.Comment:
			fmt.Fprintf(w, "%scomment %q\n", indent, t.Value)
		case *rsx.Doctype:
			fmt.Fprintf(w, "%sdoctype %s\n", indent, t.Value)
		case *rsx.Block:
			fmt.Fprintf(w, "%sblock %s\n", indent, blockLabel(t))
		}
	}
}

func attrSuffix(attrs []rsx.Attr) string {
	if len(attrs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range attrs {
		j := toJSONAttr(a)
		b.WriteByte(' ')
		b.WriteString(j.Key)
		if j.Value != "" {
			b.WriteByte('=')
			b.WriteString(j.Value)
		}
	}
	return b.String()
}

func blockLabel(b *rsx.Block) string {
	if v := b.Valid(); v != nil {
		return "{" + v.Source + "}"
	}
	return "{<invalid>}"
}
