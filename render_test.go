package main

import (
	"math"
	"testing"
)

func testRenderConfig() *Config {
	cfg := DefaultConfig()
	cfg.CameraResX = 16
	cfg.CameraResY = 8
	cfg.CameraFOVDeg = 90
	cfg.CameraProjection = ProjectionEquirectangular
	cfg.NumThreads = 1
	cfg.PerThreadBufferSize = 64
	cfg.TargetICRS_X = 1
	cfg.CameraPixelLimitMag = 0
	cfg.CameraPixelLimitMode = 0
	cfg.CameraGamma = 1.0
	cfg.RenderDistanceMax = 1e9
	cfg.StarColorMax = 32767
	return cfg
}

func whiteColorDeps() *RenderDeps {
	table := make([]RGB, maxTemperature+1)
	for i := range table {
		table[i] = RGB{R: 1, G: 1, B: 1}
	}
	return &RenderDeps{ColorTable: table}
}

func buildTestShard(records []StarRecord) *Shard {
	data := make([]byte, headerSize+len(records)*recordSize)
	for i, r := range records {
		b := encodeStarRecord(r)
		copy(data[headerSize+i*recordSize:], b[:])
	}
	return &Shard{Header: ShardHeader{RecordCount: int64(len(records))}, data: data, recordCount: int64(len(records))}
}

func TestRenderEmptyCatalogProducesBlankImage(t *testing.T) {
	cfg := testRenderConfig()
	shards := &ShardSet{Shards: []*Shard{buildTestShard(nil)}}
	img, err := Render(cfg, shards, whiteColorDeps())
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("pixel component %d: got %v, want 0 for an empty catalog", i, v)
		}
	}
}

func TestRenderSingleStarLandsOnExactPixel(t *testing.T) {
	cfg := testRenderConfig()
	star := StarRecord{X: 10, Y: 0, Z: 0, IntensityApparent: 100, TempApparent: 0, TempDereddened: 0}
	shards := &ShardSet{Shards: []*Shard{buildTestShard([]StarRecord{star})}}

	img, err := Render(cfg, shards, whiteColorDeps())
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	cx, cy := cfg.CameraResX/2, cfg.CameraResY/2
	r, g, b := img.At(cx, cy)
	if r < 0.99 || g < 0.99 || b < 0.99 {
		t.Errorf("star on the camera boresight should land at the center pixel near full intensity, got (%v,%v,%v)", r, g, b)
	}

	var total float64
	for i := 0; i < len(img.Pix); i += 3 {
		total += img.Pix[i] + img.Pix[i+1] + img.Pix[i+2]
	}
	if total > 3.3 {
		t.Errorf("single star should contribute to a small footprint, not the whole frame: total=%v", total)
	}
}

func TestRenderDedupMergesCoincidentStars(t *testing.T) {
	cfg := testRenderConfig()
	star := StarRecord{X: 1, Y: 0, Z: 0, IntensityApparent: 0.1}
	shards := &ShardSet{Shards: []*Shard{buildTestShard([]StarRecord{star, star})}}

	img, err := Render(cfg, shards, whiteColorDeps())
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	// The catalog stores intensity as a 24-bit truncated float, so each
	// star contributes the decoded value, not exactly 0.1.
	want := 2 * float64(decodeTruncatedFloat32(encodeTruncatedFloat32(0.1)))
	cx, cy := cfg.CameraResX/2, cfg.CameraResY/2
	r, _, _ := img.At(cx, cy)
	if math.Abs(r-want) > 1e-9 {
		t.Errorf("two coincident stars at the same pixel should sum their contributions, got %v want ~%v", r, want)
	}
}

func TestRenderStarAtTargetMapsNearCenter(t *testing.T) {
	cfg := testRenderConfig()
	cfg.TargetICRS_X, cfg.TargetICRS_Y, cfg.TargetICRS_Z = 3, 4, 0
	star := StarRecord{X: 30, Y: 40, Z: 0, IntensityApparent: 1}
	shards := &ShardSet{Shards: []*Shard{buildTestShard([]StarRecord{star})}}

	img, err := Render(cfg, shards, whiteColorDeps())
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	cx, cy := cfg.CameraResX/2, cfg.CameraResY/2
	var near float64
	for y := cy - 1; y <= cy+1; y++ {
		for x := cx - 1; x <= cx+1; x++ {
			r, _, _ := img.At(x, y)
			near += r
		}
	}
	if near <= 0 {
		t.Error("a star exactly along the camera-to-target direction should land on or next to the center pixel")
	}
}

func TestAiryFootprintSpreadsEnergyAcrossPixels(t *testing.T) {
	cfg := testRenderConfig()
	cfg.AiryDiskEnable = true
	cfg.AiryDiskFirstNullPixels = 2.0
	cfg.AiryDiskMinExtent = 1
	cfg.AiryDiskMaxExtent = 4

	am := BuildAiryMaps(cfg.AiryDiskFirstNullPixels, cfg.AiryDiskMaxExtent, 4, 0)
	img := &Image{Width: 32, Height: 32}

	contributions := map[int]float64{}
	submit := Submitter(func(offset int, r, g, b float64) {
		contributions[offset] += r
	})
	SplatStar(img, 16.5, 16.5, 1.0, RGB{R: 1, G: 1, B: 1}, cfg, am, submit)

	if len(contributions) <= 1 {
		t.Errorf("Airy splat should spread energy across more than one pixel, got %d contributing offsets", len(contributions))
	}
}

func TestAntiAliasConservesTotalEnergy(t *testing.T) {
	cfg := testRenderConfig()
	cfg.AntiAliasEnable = true
	cfg.AntiAliasRadius = 1.0
	img := &Image{Width: 32, Height: 32}

	var sumR float64
	submit := Submitter(func(offset int, r, g, b float64) { sumR += r })
	SplatStar(img, 16.3, 16.7, 2.0, RGB{R: 1, G: 0, B: 0}, cfg, nil, submit)

	want := 2.0 // color.R * linearIntensity, fully inside bounds so nothing is clipped
	if math.Abs(sumR-want) > 1e-9 {
		t.Errorf("anti-aliased splat should conserve total energy when unclipped: got %v want %v", sumR, want)
	}
}
