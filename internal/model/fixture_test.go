package model

import (
	"slices"
	"testing"
)

func TestCleanHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want string
	}{
		{host: "www.example.com", want: "WwwExampleCom"},
		{host: "https://API.example.com:8080", want: "ApiExampleCom8080"},
		{host: "my-shop.example", want: "MyShopExample"},
		{host: "bücher.example", want: "BücherExample"},
		{host: "123.example", want: "Host123Example"},
		{host: "---", want: "Host"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()
			if got := CleanHost(tt.host); got != tt.want {
				t.Errorf("CleanHost(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}

func TestFixtureName(t *testing.T) {
	t.Parallel()

	if got := FixtureName("WwwExampleCom", 1000, 2000); got != "WwwExampleComFrom1000To2000Test" {
		t.Errorf("FixtureName() = %q", got)
	}
}

func TestHashPath(t *testing.T) {
	t.Parallel()

	a := HashPath("/index.html")
	if len(a) != 32 {
		t.Errorf("HashPath() length = %d, want 32 hex characters", len(a))
	}
	if a != HashPath("/index.html") {
		t.Error("HashPath() is not deterministic")
	}
	if a == HashPath("/index.htm") {
		t.Error("HashPath() collides for different paths")
	}
	// Fixture ids are unkeyed BLAKE2b-128, not MD5.
	if want := "f12625304979c6feccc2f8d5826917a2"; a != want {
		t.Errorf("HashPath(%q) = %q, want %q", "/index.html", a, want)
	}
}

func TestNewHostFixture(t *testing.T) {
	t.Parallel()

	t.Run("builds names and hashes", func(t *testing.T) {
		t.Parallel()

		f := NewHostFixture("www.example.com", []string{"/a", "/b"}, 0, 4)
		if f.HostCleaned != "WwwExampleCom" {
			t.Errorf("HostCleaned = %q", f.HostCleaned)
		}
		if f.FixtureName != "WwwExampleComFrom0To4Test" {
			t.Errorf("FixtureName = %q", f.FixtureName)
		}
		want := []string{HashPath("/a"), HashPath("/b")}
		if !slices.Equal(f.PathsHashed, want) {
			t.Errorf("PathsHashed = %v, want %v", f.PathsHashed, want)
		}
		if f.Empty() {
			t.Error("Empty() = true for a fixture with paths")
		}
	})

	t.Run("nil paths make an empty fixture", func(t *testing.T) {
		t.Parallel()

		f := NewHostFixture("api.example.com", nil, 0, 4)
		if !f.Empty() {
			t.Error("Empty() = false, want true")
		}
		if f.Paths == nil || f.PathsHashed == nil {
			t.Error("expected non-nil slices so JSON renders []")
		}
	})
}
