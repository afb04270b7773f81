package metrics

import "testing"

func BenchmarkCollector_BytesSent(b *testing.B) {
	c := New()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.BytesSent(1)
		}
	})
}

func BenchmarkCollector_NilReceiver(b *testing.B) {
	var c *Collector
	for i := 0; i < b.N; i++ {
		c.BytesSent(1)
	}
}
