// File: httpd/query_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package httpd

import "testing"

func TestParseQuery(t *testing.T) {
	q := ParseQuery("name=jo+ann&city=N%C3%BCrnberg&flag=")
	if q["name"] != "jo ann" {
		t.Errorf("name %q, want %q", q["name"], "jo ann")
	}
	if q["city"] != "Nürnberg" {
		t.Errorf("city %q, want %q", q["city"], "Nürnberg")
	}
	if v, ok := q["flag"]; !ok || v != "" {
		t.Errorf("flag %q/%v, want empty present", v, ok)
	}
}

func TestParseQueryLastWins(t *testing.T) {
	q := ParseQuery("k=1&k=2&k=3")
	if q["k"] != "3" {
		t.Errorf("k %q, want 3", q["k"])
	}
}

func TestParseQueryKeysNotDecoded(t *testing.T) {
	q := ParseQuery("a%20b=c%20d")
	if _, ok := q["a b"]; ok {
		t.Error("key was decoded")
	}
	if q["a%20b"] != "c d" {
		t.Errorf("value %q, want %q", q["a%20b"], "c d")
	}
}

func TestParseQueryMalformedEscapes(t *testing.T) {
	q := ParseQuery("v=100%&w=%zz&x=%4")
	if q["v"] != "100%" {
		t.Errorf("v %q, want 100%%", q["v"])
	}
	if q["w"] != "%zz" {
		t.Errorf("w %q, want %%zz", q["w"])
	}
	if q["x"] != "%4" {
		t.Errorf("x %q, want %%4", q["x"])
	}
}

func TestParseQueryEmpty(t *testing.T) {
	if q := ParseQuery(""); len(q) != 0 {
		t.Errorf("empty query produced %v", q)
	}
}

func TestParseQueryValueWithEquals(t *testing.T) {
	q := ParseQuery("expr=a=b")
	if q["expr"] != "a=b" {
		t.Errorf("expr %q, want a=b", q["expr"])
	}
}
