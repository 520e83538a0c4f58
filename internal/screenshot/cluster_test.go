package screenshot

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/corona10/goimagehash"

	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/testutil"
)

func writePNG(t *testing.T, path string, shade func(x, y int) uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: shade(x, y)})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func gradient(x, y int) uint8 { return uint8(x * 4) }

func TestGroupSimilar(t *testing.T) {
	imgs := []hashedImage{
		{"a.png", goimagehash.NewImageHash(0x0, goimagehash.PHash)},
		{"b.png", goimagehash.NewImageHash(0xff, goimagehash.PHash)},
		{"c.png", goimagehash.NewImageHash(0xffffffffffffffff, goimagehash.PHash)},
		{"d.png", goimagehash.NewImageHash(0x1ff, goimagehash.PHash)},
		{"e.png", goimagehash.NewImageHash(0xfffffffffffffffe, goimagehash.PHash)},
	}

	clusters := groupSimilar(imgs, SimilarityThreshold)
	if len(clusters) != 2 {
		t.Fatalf("Expected 2 clusters, got %+v", clusters)
	}
	// d is 1 bit from b and 9 from a, so the chain a-b-d forms one cluster
	if clusters[0].Count != 3 || clusters[0].Files[0] != "a.png" || clusters[0].Files[2] != "d.png" {
		t.Errorf("Unexpected first cluster %+v", clusters[0])
	}
	if clusters[1].Count != 2 || clusters[1].Files[0] != "c.png" {
		t.Errorf("Unexpected second cluster %+v", clusters[1])
	}
	if clusters[0].ID != "cluster_0" || clusters[1].ID != "cluster_1" {
		t.Errorf("Expected ordered IDs, got %s %s", clusters[0].ID, clusters[1].ID)
	}
}

func TestGroupSimilarNoPairs(t *testing.T) {
	imgs := []hashedImage{
		{"a.png", goimagehash.NewImageHash(0x0, goimagehash.PHash)},
		{"b.png", goimagehash.NewImageHash(0xffffffffffffffff, goimagehash.PHash)},
	}
	if clusters := groupSimilar(imgs, SimilarityThreshold); len(clusters) != 0 {
		t.Errorf("Expected no clusters, got %+v", clusters)
	}
}

func TestClusterDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "http---a.example.com-443.png"), gradient)
	writePNG(t, filepath.Join(dir, "http---b.example.com-443.png"), gradient)
	testutil.WriteFile(t, dir, "broken.png", "not an image")
	testutil.WriteFile(t, dir, "urls.txt", "https://a.example.com\n")

	clusters, err := ClusterDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(clusters) != 1 || clusters[0].Count != 2 {
		t.Fatalf("Expected the two identical pages in one cluster, got %+v", clusters)
	}
	if clusters[0].Files[0] != "http---a.example.com-443.png" {
		t.Errorf("Unexpected files %v", clusters[0].Files)
	}
}

func TestRunWritesClusters(t *testing.T) {
	src := filepath.Join(t.TempDir(), "page.png")
	writePNG(t, src, gradient)

	bin := testutil.BinDir(t, true)
	testutil.FakeTool(t, bin, "gowitness", fakeGowitness("3.0.5", true)+`
cp `+src+` a.png
cp `+src+` b.png`)
	env, _ := newEnv(t)

	a, err := module.Execute(context.Background(), NewCapturer(), env, probeInputs(t, env.WorkDir))
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	var clusters []Cluster
	if err := json.Unmarshal([]byte(testutil.ReadFile(t, filepath.Join(a.Path, ClustersFile))), &clusters); err != nil {
		t.Fatal(err)
	}
	if len(clusters) != 1 || clusters[0].Count != 2 {
		t.Errorf("Expected one cluster of 2, got %+v", clusters)
	}
	if len(a.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", a.Warnings)
	}
}
