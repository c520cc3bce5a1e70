package generation

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/zeebo/blake3"
)

const chunkSize = 1 << 20 // 1 MiB

// newChunk expands the seed into a single payload chunk using the blake3 XOF.
// Written files repeat this chunk, so a dataset is reproducible for a seed.
func newChunk(seed string) ([]byte, error) {
	hasher := blake3.New()
	if _, err := hasher.Write([]byte(seed)); err != nil {
		return nil, fmt.Errorf("(gen) failed to hash seed: %w", err)
	}

	chunk := make([]byte, chunkSize)
	if _, err := io.ReadFull(hasher.Digest(), chunk); err != nil {
		return nil, fmt.Errorf("(gen) failed to expand seed: %w", err)
	}

	return chunk, nil
}

// newRand derives a deterministic size randomizer from the seed.
func newRand(seed string) *rand.Rand {
	sum := blake3.Sum256([]byte(seed))

	return rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(sum[0:8]),
		binary.LittleEndian.Uint64(sum[8:16]),
	))
}

// writeFile writes sizeBytes of payload data to a path, repeating the
// pre-expanded chunk until the requested size is reached.
func (g *Handler) writeFile(ctx context.Context, path string, sizeBytes uint64) error {
	file, err := g.osHandler.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("(gen) failed to open file: %w", err)
	}
	defer file.Close()

	var written uint64

	for written < sizeBytes {
		if ctx.Err() != nil {
			return fmt.Errorf("(gen) canceled: %w", ctx.Err())
		}

		toWrite := min(sizeBytes-written, uint64(len(g.chunk)))

		n, err := file.Write(g.chunk[:toWrite])
		if err != nil {
			return fmt.Errorf("(gen) failed to write file: %w", err)
		}

		written += uint64(n)
	}

	return nil
}
