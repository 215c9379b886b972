package recovery

import "testing"

func TestRedactNested(t *testing.T) {
	in := `{"user":{"password":"p","profile":{"token":"t","age":30}},"items":[{"secret":"s1"},{"name":"n"}],"token":"top"}`
	out, err := Redact([]byte(in), []string{"password", "token", "secret"}, "***REDACTED***")
	if err != nil {
		t.Fatal(err)
	}
	want := `{"user":{"password":"***REDACTED***","profile":{"token":"***REDACTED***","age":30}},"items":[{"secret":"***REDACTED***"},{"name":"n"}],"token":"***REDACTED***"}`
	if string(out) != want {
		t.Fatalf("unexpected output:\n got %s\nwant %s", out, want)
	}
}

func TestRedactReplacesWholeSubtree(t *testing.T) {
	in := `{"credentials":{"user":"u","pass":"p"},"ok":true}`
	out, err := Redact([]byte(in), []string{"credentials"}, "x")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"credentials":"x","ok":true}` {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestRedactPreservesOrderAndNumbers(t *testing.T) {
	in := `{"zeta":1e3,"alpha":0.10,"secret":"s"}`
	out, err := Redact([]byte(in), []string{"secret"}, "*")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"zeta":1e3,"alpha":0.10,"secret":"*"}` {
		t.Fatalf("expected literals untouched, got %s", out)
	}
}

func TestRedactCaseInsensitive(t *testing.T) {
	out, err := Redact([]byte(`{"Token":"t"}`), []string{"token"}, "*")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"Token":"*"}` {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestRedactNoFieldsPassthrough(t *testing.T) {
	in := `{"a": 1}`
	out, err := Redact([]byte(in), nil, "*")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != in {
		t.Fatalf("expected input unchanged, got %s", out)
	}
}

func TestRedactInvalidJSON(t *testing.T) {
	if _, err := Redact([]byte(`{"a":`), []string{"a"}, "*"); err == nil {
		t.Fatalf("expected error for truncated input")
	}
}
