package token

import "testing"

func TestKindOfSymbol(t *testing.T) {
	base := []Kind{MoveRight, MoveLeft, Inc, Dec, Output, Input, LoopOpen, LoopClose}

	for _, k := range base {
		c, ok := k.Symbol()
		if !ok {
			t.Errorf("%v: no symbol", k)
			continue
		}

		if q := KindOf(c); q != k {
			t.Errorf("%v: symbol %q maps back to %v", k, c, q)
		}
	}

	for _, c := range "ax \n*#" {
		if k := KindOf(c); k != Illegal {
			t.Errorf("%q: expected Illegal, got %v", c, k)
		}
	}

	for _, k := range []Kind{Illegal, Proc} {
		if _, ok := k.Symbol(); ok {
			t.Errorf("%v: unexpected symbol", k)
		}
	}
}

func TestString(t *testing.T) {
	if s := Inc.String(); s != "inc" {
		t.Errorf("inc: %v", s)
	}

	if s := Kind(100).String(); s != "kind(100)" {
		t.Errorf("unknown kind: %v", s)
	}

	tk := Token{Kind: Proc, Ch: '*', Pos: 4}
	if s := tk.String(); s != `proc('*')` {
		t.Errorf("proc token: %v", s)
	}

	tk = Token{Kind: MoveLeft, Ch: '<'}
	if s := tk.String(); s != "left" {
		t.Errorf("base token: %v", s)
	}
}
