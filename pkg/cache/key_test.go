package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "default session",
			key:  Key{Resource: "users"},
			want: "admin:default:users",
		},
		{
			name: "session scoped",
			key:  Key{Session: "s-1", Resource: "users"},
			want: "admin:s-1:users",
		},
		{
			name: "query params sorted",
			key: Key{
				Session:  "s-1",
				Resource: "records",
				Query: url.Values{
					"status": []string{"reviewed"},
					"media":  []string{"audio"},
				},
			},
			want: "admin:s-1:records:media=audio:status=reviewed",
		},
		{
			name: "enrichment resource",
			key:  Key{Session: "s-1", Resource: "user_activity"},
			want: "admin:s-1:user_activity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	key := Key{
		Session:  "s-1",
		Resource: "records",
		Query: url.Values{
			"z": []string{"1"},
			"a": []string{"2"},
			"m": []string{"3"},
		},
	}

	first := key.String()
	for i := 0; i < 100; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q vs %q", got, first)
		}
	}
}

func TestSessionPrefix(t *testing.T) {
	if got := SessionPrefix("s-1"); got != "admin:s-1:" {
		t.Errorf("SessionPrefix() = %q", got)
	}
	if got := SessionPrefix(""); got != "admin:default:" {
		t.Errorf("SessionPrefix(\"\") = %q", got)
	}
}
