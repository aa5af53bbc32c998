package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/sitetrends/internal/domain"
)

const callerSuffix = "and(actor(me,action:1021),actor(me,or(action:1021,action:1036,action:1037,action:1039)))"

func TestCompile_Nodes(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"action", Action(1020), "action:1020"},
		{"actor", Actor("42", Action(1020)), "actor(42,action:1020)"},
		{"and", And(Action(1), Action(2)), "and(action:1,action:2)"},
		{"or nested", Or(Actor("a", Or(Action(1), Action(2))), Action(3)), "or(actor(a,or(action:1,action:2)),action:3)"},
		{"empty or", Or(), "or()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compile(tt.node).String(); got != tt.want {
				t.Errorf("Compile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpression_ZeroValue(t *testing.T) {
	var e Expression
	if !e.IsEmpty() {
		t.Error("zero Expression should be empty")
	}
	if e.String() != "" {
		t.Errorf("String() = %q", e.String())
	}
}

func TestBuild_SingleActor(t *testing.T) {
	e, err := Build([]string{"123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "or(actor(123,action:1020)," + callerSuffix + ")"
	if e.String() != want {
		t.Errorf("Build() =\n%q\nwant\n%q", e.String(), want)
	}
}

func TestBuild_SingleActorTemplate(t *testing.T) {
	for _, id := range []string{"1", "17592186044416", "abc-def"} {
		e, err := Build([]string{id})
		if err != nil {
			t.Fatalf("Build(%q): %v", id, err)
		}
		want := "or(actor(" + id + ",action:1020),and(actor(me,action:1021)," +
			"actor(me,or(action:1021,action:1036,action:1037,action:1039))))"
		if e.String() != want {
			t.Errorf("Build(%q) = %q, want %q", id, e.String(), want)
		}
	}
}

func TestBuild_MultipleActorsPreserveOrder(t *testing.T) {
	e, err := Build([]string{"3", "1", "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "or(actor(3,action:1020),actor(1,action:1020),actor(2,action:1020)," + callerSuffix + ")"
	if e.String() != want {
		t.Errorf("Build() =\n%q\nwant\n%q", e.String(), want)
	}
}

func TestBuild_DuplicatesKept(t *testing.T) {
	e, err := Build([]string{"7", "7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := strings.Count(e.String(), "actor(7,action:1020)"); n != 2 {
		t.Errorf("expected duplicate clause twice, got %d in %q", n, e.String())
	}
}

func TestBuild_AlwaysIncludesCallerClause(t *testing.T) {
	for n := 1; n <= 5; n++ {
		actors := make([]string, n)
		for i := range actors {
			actors[i] = "a"
		}
		e, err := Build(actors)
		if err != nil {
			t.Fatalf("Build(%d actors): %v", n, err)
		}
		if !strings.HasSuffix(e.String(), ","+callerSuffix+")") {
			t.Errorf("Build(%d actors) lacks caller clause: %q", n, e.String())
		}
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	for _, in := range [][]string{nil, {}} {
		_, err := Build(in)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	}
}

func TestBuild_InvalidActorIDs(t *testing.T) {
	tests := []struct {
		name   string
		actors []string
	}{
		{"empty id", []string{"1", ""}},
		{"comma", []string{"1,2"}},
		{"paren", []string{"x)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.actors)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestValidateActor(t *testing.T) {
	for _, id := range []string{"1001", "AAAA-bbbb", "user@contoso.com"} {
		if err := ValidateActor(id); err != nil {
			t.Errorf("ValidateActor(%q) = %v", id, err)
		}
	}
	for _, id := range []string{"", "a(b", "a)b", "a,b"} {
		if err := ValidateActor(id); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("ValidateActor(%q) = %v, want ErrInvalidArgument", id, err)
		}
	}
}
