package cmd

import (
	"context"
	"reflect"
	"testing"
)

type stub struct {
	name    string
	aliases []string
	runs    int
}

func (s *stub) Name() string        { return s.name }
func (s *stub) Aliases() []string   { return s.aliases }
func (s *stub) Description() string { return "stub" }
func (s *stub) Run(context.Context, *Invocation) error {
	s.runs++
	return nil
}

func TestRegistryAliases(t *testing.T) {
	r := NewRegistry()
	c := &stub{name: "pyramid-score", aliases: []string{"pyramid_score"}}
	if err := r.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for _, name := range []string{"pyramid-score", "PYRAMID_SCORE"} {
		if r.Get(name) != c {
			t.Fatalf("Get(%q) did not resolve", name)
		}
	}
	if r.Get("nope") != nil {
		t.Fatalf("unknown name should be nil")
	}
	if len(r.GetAll()) != 1 {
		t.Fatalf("aliases must not duplicate GetAll entries")
	}
}

func TestRegistryRejectsClash(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(&stub{name: "a", aliases: []string{"b"}})

	if err := r.Register(&stub{name: "b"}); err == nil {
		t.Fatalf("alias clash not detected")
	}
	if err := r.Register(&stub{name: "c", aliases: []string{"A"}}); err == nil {
		t.Fatalf("case-insensitive clash not detected")
	}
	if r.Get("c") != nil {
		t.Fatalf("failed registration must not leave entries")
	}
}

func TestApplyOrderAndRoot(t *testing.T) {
	var order []string
	mw := func(tag string) Middleware {
		return func(c Command) Command {
			return Wrap(c, func(ctx context.Context, inv *Invocation) error {
				order = append(order, tag)
				return c.Run(ctx, inv)
			})
		}
	}

	base := &stub{name: "x"}
	wrapped := Apply(base, mw("inner"), mw("outer"))
	if err := wrapped.Run(context.Background(), &Invocation{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(order, []string{"outer", "inner"}) {
		t.Fatalf("order = %v", order)
	}
	if base.runs != 1 {
		t.Fatalf("base ran %d times", base.runs)
	}
	if Root(wrapped) != base {
		t.Fatalf("Root did not unwrap")
	}
	if wrapped.Name() != "x" {
		t.Fatalf("Name not delegated")
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		line string
		ok   bool
		name string
		args []string
		raw  string
	}{
		{"?hello", true, "hello", []string{}, ""},
		{"  ?Pyramid-Score success -user @Bob ", true, "pyramid-score", []string{"success", "-user", "@Bob"}, "success -user @Bob"},
		{"?spam a  b", true, "spam", []string{"a", "b"}, "a  b"},
		{"hello", false, "", nil, ""},
		{"?", false, "", nil, ""},
		{"? hello", false, "", nil, ""},
	}
	for _, c := range cases {
		inv, ok := Parse("?", c.line)
		if ok != c.ok {
			t.Fatalf("Parse(%q) ok = %v", c.line, ok)
		}
		if !ok {
			continue
		}
		if inv.Name != c.name || !reflect.DeepEqual(inv.Args, c.args) || inv.Raw != c.raw {
			t.Fatalf("Parse(%q) = %+v", c.line, inv)
		}
	}
}
