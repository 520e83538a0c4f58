package screenshot

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corona10/goimagehash"
)

// ClustersFile lists groups of near-identical screenshots. It is written
// inside OutputDir, only when at least one group exists.
const ClustersFile = "clusters.json"

// SimilarityThreshold is the largest perceptual hash distance (out of 64
// bits) at which two screenshots still count as the same page.
const SimilarityThreshold = 8

// Cluster groups screenshots of visually similar pages, e.g. a wildcard
// default page served by many hosts.
type Cluster struct {
	ID    string   `json:"id"`
	Hash  string   `json:"hash"`
	Count int      `json:"count"`
	Files []string `json:"files"`
}

type hashedImage struct {
	name string
	hash *goimagehash.ImageHash
}

// ClusterDir hashes every PNG and JPEG directly under dir and groups the
// ones within SimilarityThreshold of each other. Images that fail to decode
// are skipped; single images are not reported.
func ClusterDir(dir string) ([]Cluster, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot directory: %w", err)
	}

	var imgs []hashedImage
	for _, e := range entries {
		if !e.Type().IsRegular() || !isImageFile(e.Name()) {
			continue
		}
		h, err := hashImage(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		imgs = append(imgs, hashedImage{name: e.Name(), hash: h})
	}
	return groupSimilar(imgs, SimilarityThreshold), nil
}

func hashImage(path string) (*goimagehash.ImageHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return goimagehash.PerceptionHash(img)
}

// groupSimilar joins every pair within threshold (union-find), so a chain
// of close images ends up in one cluster. Largest clusters come first.
func groupSimilar(imgs []hashedImage, threshold int) []Cluster {
	parent := make([]int, len(imgs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := 0; i < len(imgs); i++ {
		for j := i + 1; j < len(imgs); j++ {
			d, err := imgs[i].hash.Distance(imgs[j].hash)
			if err != nil || d > threshold {
				continue
			}
			if pi, pj := find(i), find(j); pi != pj {
				parent[pj] = pi
			}
		}
	}

	members := make(map[int][]int)
	for i := range imgs {
		root := find(i)
		members[root] = append(members[root], i)
	}

	var clusters []Cluster
	for root, idx := range members {
		if len(idx) < 2 {
			continue
		}
		files := make([]string, 0, len(idx))
		for _, i := range idx {
			files = append(files, imgs[i].name)
		}
		sort.Strings(files)
		clusters = append(clusters, Cluster{
			Hash:  fmt.Sprintf("%016x", imgs[root].hash.GetHash()),
			Count: len(files),
			Files: files,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		return clusters[i].Files[0] < clusters[j].Files[0]
	})
	for i := range clusters {
		clusters[i].ID = fmt.Sprintf("cluster_%d", i)
	}
	return clusters
}

// WriteClusters saves clusters as indented JSON.
func WriteClusters(path string, clusters []Cluster) error {
	data, err := json.MarshalIndent(clusters, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}
