package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LOG_SERVICE", " meitanbot ")
	log := New().Prefix("LOG_")

	if got := log.Get("SERVICE", "x"); got != "meitanbot" {
		t.Fatalf("Get = %q, want meitanbot", got)
	}
	if got := log.Get("MISSING", "def"); got != "def" {
		t.Fatalf("Get missing = %q, want def", got)
	}
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("LOG_")
	t.Setenv("LOG_T1", "YES")
	t.Setenv("LOG_T2", " 1 ")
	t.Setenv("LOG_F1", "off")

	tests := []struct {
		key  string
		def  bool
		want bool
	}{
		{"T1", false, true},
		{"T2", false, true},
		{"F1", true, false},
		{"UNSET", true, true},
	}
	for _, tt := range tests {
		if got := c.GetBool(tt.key, tt.def); got != tt.want {
			t.Fatalf("GetBool(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestGetInt(t *testing.T) {
	c := New().Prefix("LOG_")
	t.Setenv("LOG_OK", " 42 ")
	t.Setenv("LOG_NEG", "-5")
	t.Setenv("LOG_JUNK", "4x")

	tests := []struct {
		key  string
		def  int
		want int
	}{
		{"OK", 0, 42},
		{"NEG", 3, 3},
		{"JUNK", 9, 9},
		{"UNSET", 11, 11},
	}
	for _, tt := range tests {
		if got := c.GetInt(tt.key, tt.def); got != tt.want {
			t.Fatalf("GetInt(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}
