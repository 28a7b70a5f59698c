package manifest

import "testing"

func TestParseBasicTypes(t *testing.T) {
	v, err := Parse(`{"a": 1, "b": "two", "c": true, "d": false, "e": null, "f": [1, "x", false]}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !v.IsObject() {
		t.Fatalf("expected object")
	}
	a, _ := v.Get("a")
	if a.Kind != KindNumber || a.Num != 1 {
		t.Errorf("a = %+v", a)
	}
	b, _ := v.Get("b")
	if !b.IsString() || b.Str != "two" {
		t.Errorf("b = %+v", b)
	}
	c, _ := v.Get("c")
	if c.Kind != KindBool || c.Bool != true {
		t.Errorf("c = %+v", c)
	}
	e, _ := v.Get("e")
	if !e.IsNull() {
		t.Errorf("e should be null, got %+v", e)
	}
	f, _ := v.Get("f")
	if f.Kind != KindArray || len(f.Arr) != 3 {
		t.Errorf("f = %+v", f)
	}
}

func TestParsePreservesKeyOrder(t *testing.T) {
	v, err := Parse(`{"z": 1, "a": 2, "m": 3}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := []string{"z", "a", "m"}
	if len(v.Obj) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(v.Obj), len(want))
	}
	for i, k := range want {
		if v.Obj[i].Key != k {
			t.Errorf("key[%d] = %q, want %q", i, v.Obj[i].Key, k)
		}
	}
}

func TestParseStringEscapes(t *testing.T) {
	v, err := Parse(`"a\nb\tc\"d\\e"`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := "a\nb\tc\"d\\e"
	if v.Str != want {
		t.Errorf("got %q, want %q", v.Str, want)
	}
}

func TestParseUnicodeEscape(t *testing.T) {
	v, err := Parse("\"\\u00e9\"")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if v.Str != "é" {
		t.Errorf("got %q, want %q", v.Str, "é")
	}
}

func TestParseSurrogatePair(t *testing.T) {
	v, err := Parse("\"\\ud83d\\ude00\"")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if v.Str != "😀" {
		t.Errorf("got %q, want %q", v.Str, "😀")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		`{"a": }`,
		`{"a": 1,}`,
		`[1, 2,]`,
		`{a: 1}`,
		`truee`,
		`{"a": 1} trailing`,
		``,
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) expected error, got none", c)
		}
	}
}

func TestKeysStartWithDot(t *testing.T) {
	v, _ := Parse(`{".": "./a.js", "./b": "./b.js"}`)
	if !v.KeysStartWithDot() {
		t.Errorf("expected KeysStartWithDot true")
	}
	v2, _ := Parse(`{"import": "./a.js", "require": "./b.js"}`)
	if v2.KeysStartWithDot() {
		t.Errorf("expected KeysStartWithDot false")
	}
	v3, _ := Parse(`{}`)
	if v3.KeysStartWithDot() {
		t.Errorf("empty object should report false")
	}
}

func TestGetMissingKey(t *testing.T) {
	v, _ := Parse(`{"a": 1}`)
	_, ok := v.Get("missing")
	if ok {
		t.Errorf("expected ok=false for missing key")
	}
}
