package router

import (
	"fmt"
	"testing"
)

func BenchmarkRouterSelectLiteral(b *testing.B) {
	r := New()
	for _, p := range []string{"/", "/about", "/contact", "/pricing", "/features"} {
		r.MustAdd(p, p)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Select("/pricing")
	}
}

func BenchmarkRouterSelectParam(b *testing.B) {
	r := New()
	r.MustAdd("/users/:id", nil)
	r.MustAdd("/users/new", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Select("/users/123")
	}
}

func BenchmarkRouterSelectMany(b *testing.B) {
	r := New()
	for i := 0; i < 100; i++ {
		r.MustAdd(fmt.Sprintf("/section%d/:id", i), i)
	}
	r.MustAdd("", nil, AsDefault())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Select("/section99/7")
	}
}

func BenchmarkOrderRoutes(b *testing.B) {
	entries := make([]Entry, 50)
	for i := range entries {
		entries[i] = Entry{Pattern: fmt.Sprintf("/a/:b/%d", i%7), Index: i}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		OrderRoutes(entries)
	}
}
