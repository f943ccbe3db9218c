package domain

import "testing"

func TestBookCoverID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		book Book
		want string
	}{
		{"field wins", Book{ISBN: "111", URL: "https://micro.blog/books/222"}, "111"},
		{"from url", Book{URL: "https://micro.blog/books/9780441013593"}, "9780441013593"},
		{"none", Book{URL: "https://example.com/reading"}, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.book.CoverID(); got != tt.want {
				t.Fatalf("CoverID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBookHighQualityCoverURL(t *testing.T) {
	t.Parallel()

	b := Book{CoverURL: "http://books.google.com/books/content?id=abc123&printsec=frontcover&img=1&zoom=1&edge=curl"}
	want := "https://books.google.com/books/content?id=abc123&printsec=frontcover&img=1&zoom=0&source=gbs_api"
	if got := b.HighQualityCoverURL(); got != want {
		t.Fatalf("HighQualityCoverURL() = %q, want %q", got, want)
	}

	plain := Book{CoverURL: "https://covers/x.jpg"}
	if got := plain.HighQualityCoverURL(); got != plain.CoverURL {
		t.Fatalf("non-google cover rewritten to %q", got)
	}
}
