// Package geoindex maintains a spatial index of vehicle positions. The
// tracker feeds it on every applied location update; the optimizer uses
// the geohash cells as a candidate prefilter and the query layer serves
// nearby-vehicle lookups from the r-tree.
package geoindex

import (
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/mmcloughlin/geohash"
)

// DefaultPrecision is the geohash cell size used for candidate
// prefiltering; precision 5 cells are roughly 5x5 km.
const DefaultPrecision uint = 5

// pointTol is the bounding-box tolerance for indexed points.
const pointTol = 1e-6

// kmPerDegree approximates one degree of latitude.
const kmPerDegree = 111.0

type entry struct {
	id   string
	lat  float64
	lng  float64
	cell string
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect { return e.rect }

// Index is a thread-safe r-tree plus geohash bucket index keyed by
// entity ID.
type Index struct {
	mu        sync.RWMutex
	tree      *rtreego.Rtree
	entries   map[string]*entry
	cells     map[string]map[string]struct{}
	precision uint
}

// New returns an empty index using the given geohash precision; zero
// selects DefaultPrecision.
func New(precision uint) *Index {
	if precision == 0 {
		precision = DefaultPrecision
	}
	return &Index{
		tree:      rtreego.NewTree(2, 25, 50),
		entries:   map[string]*entry{},
		cells:     map[string]map[string]struct{}{},
		precision: precision,
	}
}

// Upsert records the latest position for id, replacing any previous one.
func (ix *Index) Upsert(id string, lat, lng float64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(id)
	e := &entry{
		id:   id,
		lat:  lat,
		lng:  lng,
		cell: geohash.EncodeWithPrecision(lat, lng, ix.precision),
		rect: rtreego.Point{lat, lng}.ToRect(pointTol),
	}
	ix.entries[id] = e
	ix.tree.Insert(e)
	if ix.cells[e.cell] == nil {
		ix.cells[e.cell] = map[string]struct{}{}
	}
	ix.cells[e.cell][id] = struct{}{}
}

// Remove drops id from the index. Unknown ids are ignored.
func (ix *Index) Remove(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(id)
}

func (ix *Index) removeLocked(id string) {
	e, ok := ix.entries[id]
	if !ok {
		return
	}
	ix.tree.Delete(e)
	delete(ix.entries, id)
	if members := ix.cells[e.cell]; members != nil {
		delete(members, id)
		if len(members) == 0 {
			delete(ix.cells, e.cell)
		}
	}
}

// CellMembers returns the ids indexed in the geohash cell containing
// (lat, lng) and its eight neighbors.
func (ix *Index) CellMembers(lat, lng float64) map[string]struct{} {
	center := geohash.EncodeWithPrecision(lat, lng, ix.precision)
	hashes := append(geohash.Neighbors(center), center)

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	res := map[string]struct{}{}
	for _, h := range hashes {
		for id := range ix.cells[h] {
			res[id] = struct{}{}
		}
	}
	return res
}

// Near returns the ids of entries whose bounding box intersects a
// radiusKm window around (lat, lng). The window is a flat-earth
// approximation; callers refine with a real distance function.
func (ix *Index) Near(lat, lng, radiusKm float64) []string {
	deg := radiusKm / kmPerDegree
	bb := rtreego.Point{lat, lng}.ToRect(deg)

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	hits := ix.tree.SearchIntersect(bb)
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.(*entry).id)
	}
	return ids
}

// Position returns the indexed coordinates for id.
func (ix *Index) Position(id string) (lat, lng float64, ok bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	e, found := ix.entries[id]
	if !found {
		return 0, 0, false
	}
	return e.lat, e.lng, true
}
