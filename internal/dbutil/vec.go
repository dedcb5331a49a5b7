package dbutil

import (
	"database/sql"
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	msqlite "modernc.org/sqlite"
)

// EncodeVector packs a float32 vector into its little-endian byte
// representation, the wire format sqlite-vec's vec0 tables use.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector unpacks a byte slice produced by EncodeVector.
func DecodeVector(b []byte) []float32 {
	n := len(b) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

// cosineDistance computes 1-cosine_similarity, matching sqlite-vec's
// vector_distance_cos (0 = identical, 2 = opposite).
func cosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector_distance_cos: dimension mismatch %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		af, bf := float64(a[i]), float64(b[i])
		dot += af * bf
		na += af * af
		nb += bf * bf
	}
	if na == 0 || nb == 0 {
		return 1, nil
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb)), nil
}

var registerModerncVecOnce sync.Once

// RegisterModerncVecFunctions installs vector_distance_cos as a
// deterministic scalar function on the modernc.org/sqlite driver, so the
// code store can rank candidates with plain SQL
// ("ORDER BY vector_distance_cos(embedding, ?) LIMIT k") the same way a
// real vec0 table would, without requiring cgo on the code-store build.
func RegisterModerncVecFunctions() {
	registerModerncVecOnce.Do(func() {
		_ = msqlite.RegisterDeterministicScalarFunction("vector_distance_cos", 2,
			func(ctx *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
				a, ok1 := args[0].([]byte)
				b, ok2 := args[1].([]byte)
				if !ok1 || !ok2 {
					return nil, fmt.Errorf("vector_distance_cos: expected blob arguments")
				}
				d, err := cosineDistance(DecodeVector(a), DecodeVector(b))
				if err != nil {
					return nil, err
				}
				return d, nil
			})
	})
}

// VectorTableSpec describes a dense-vector table. Dimension is carried
// for callers; CreateVectorTable does not use it.
type VectorTableSpec struct {
	Name      string
	Dimension int
}

// CreateVectorTable creates (or verifies) a dense-vector table storing one
// embedding BLOB per referenced row id, with each row recording its own
// length in the dimension column. spec.Dimension is not enforced by the
// table: there is no CHECK constraint (SQLite has no fixed-length BLOB
// type).
func CreateVectorTable(db *sql.DB, spec VectorTableSpec) error {
	ddl := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		ref_id INTEGER PRIMARY KEY,
		embedding BLOB NOT NULL,
		dimension INTEGER NOT NULL
	);`, spec.Name)
	_, err := db.Exec(ddl)
	return err
}

// RebuildVectorTable truncates a vector table, used when the embedding
// provider or dimension changes (spec invariant: "vec_code is truncated
// and all live chunks re-enqueued exactly once").
func RebuildVectorTable(db *sql.DB, name string) error {
	_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", name))
	return err
}
