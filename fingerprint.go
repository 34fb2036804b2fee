package collisionflow

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the quantized state of every polygon, in handle order: vertex
// positions, velocities and accelerations. Two dispatchers holding the same geometry at
// the same simulated time share a fingerprint.
func (d *Dispatcher) Fingerprint() uint64 {
	digest := xxhash.New()
	buf := make([]byte, 0, 64)

	for _, h := range d.Handles() {
		p := d.entries[h].Polygon
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(h))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(p.Kind()))
		_, _ = digest.Write(buf)

		for _, v := range p.Vertices() {
			buf = buf[:0]
			for _, x := range [6]float64{
				v.Position.X(), v.Position.Y(),
				v.Course.X.V, v.Course.Y.V,
				v.Course.X.A, v.Course.Y.A,
			} {
				buf = binary.LittleEndian.AppendUint64(buf, uint64(d.cmp.Quantize(x)))
			}
			_, _ = digest.Write(buf)
		}
	}

	return digest.Sum64()
}
