//go:build bench
// +build bench

package codec

import (
	"bytes"
	"fmt"
	"testing"
)

func BenchmarkEncode(b *testing.B) {
	benchmarks := []struct {
		name string
		typ  Type
		v    any
	}{
		{"int32", Int32BE, int32(123456)},
		{"float64", Float64LE, 3.14159},
		{"string-small", StringBE, "john@example.com"},
		{"bytes-large", BytesBE, bytes.Repeat([]byte("v"), 10000)},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Encode(bm.typ, bm.v); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkReader_ReadType(b *testing.B) {
	data := bytes.Repeat([]byte{0, 0, 0, 1}, 1024)
	src := bytes.NewReader(data)
	r := NewReader(src)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if src.Len() == 0 {
			src.Reset(data)
		}
		if _, err := r.ReadType(Int32BE); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReader_ReadPayload(b *testing.B) {
	for _, size := range []int{16, 1024, 64 << 10} {
		payload := bytes.Repeat([]byte("x"), size)
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			b.SetBytes(int64(size))
			for i := 0; i < b.N; i++ {
				if _, err := NewReader(bytes.NewReader(payload)).ReadPayload(BytesBE, int64(size)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
