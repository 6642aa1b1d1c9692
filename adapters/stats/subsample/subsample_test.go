package subsample

import (
	"math/rand"
	"testing"
)

func TestDraw_SumsExactlyToDepth(t *testing.T) {
	counts := []int64{200, 200, 200}
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		out, err := Draw(counts, 300, rng)
		if err != nil {
			t.Fatalf("Draw returned error: %v", err)
		}
		var total int64
		for i, v := range out {
			if v < 0 {
				t.Fatalf("negative drawn count at taxon %d", i)
			}
			if v > counts[i] {
				t.Fatalf("taxon %d drew %d reads from only %d", i, v, counts[i])
			}
			total += v
		}
		if total != 300 {
			t.Fatalf("seed %d: drawn total = %d, expected exactly 300", seed, total)
		}
	}
}

func TestDraw_DepthEqualsLibrarySizeIsIdentity(t *testing.T) {
	counts := []int64{68, 32, 0}
	rng := rand.New(rand.NewSource(1))
	out, err := Draw(counts, 100, rng)
	if err != nil {
		t.Fatalf("Draw returned error: %v", err)
	}
	for i, v := range counts {
		if out[i] != v {
			t.Errorf("taxon %d: got %d, expected the original %d (no removal at full depth)", i, out[i], v)
		}
	}
}

func TestDraw_Deterministic(t *testing.T) {
	counts := []int64{500, 300, 150, 50}
	a, err := Draw(counts, 400, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Draw returned error: %v", err)
	}
	b, err := Draw(counts, 400, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Draw returned error: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different draws at taxon %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestDraw_ExpectationTracksProportions(t *testing.T) {
	// Subsampling 600 reads split evenly across three taxa down to 300
	// should land near 100 per taxon. The hypergeometric standard
	// deviation here is about 6 reads, so 40 is a generous margin.
	counts := []int64{200, 200, 200}
	out, err := Draw(counts, 300, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("Draw returned error: %v", err)
	}
	for i, v := range out {
		if v < 60 || v > 140 {
			t.Errorf("taxon %d drew %d reads, expected near 100", i, v)
		}
	}
}

func TestDraw_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := Draw([]int64{10, 10}, 0, rng); err == nil {
		t.Error("depth 0 should be rejected")
	}
	if _, err := Draw([]int64{10, 10}, 21, rng); err == nil {
		t.Error("depth above library size should be rejected")
	}
}

func TestDrawScaled(t *testing.T) {
	out, err := DrawScaled([]int64{200, 200, 200}, 300)
	if err != nil {
		t.Fatalf("DrawScaled returned error: %v", err)
	}
	for i, v := range out {
		if v != 100 {
			t.Errorf("taxon %d scaled to %d, expected 100", i, v)
		}
	}

	// Rounding error may leave the column sum off target; that is the
	// documented cost of the shortcut.
	out, err = DrawScaled([]int64{1, 1, 1}, 2)
	if err != nil {
		t.Fatalf("DrawScaled returned error: %v", err)
	}
	var total int64
	for _, v := range out {
		total += v
	}
	if total != 3 {
		t.Errorf("rounding 0.667 per taxon should give 1+1+1=3, got %d", total)
	}

	if _, err := DrawScaled([]int64{1}, 2); err == nil {
		t.Error("depth above library size should be rejected")
	}
}
