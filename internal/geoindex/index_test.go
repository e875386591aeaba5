package geoindex

import "testing"

func TestIndex_UpsertAndNear(t *testing.T) {
	ix := New(0)
	ix.Upsert("v1", 40.0, -74.0)
	ix.Upsert("v2", 41.0, -75.0)

	ids := ix.Near(40.0, -74.0, 5)
	if len(ids) != 1 || ids[0] != "v1" {
		t.Fatalf("expected only v1 within 5km, got %v", ids)
	}
}

func TestIndex_UpsertReplacesPosition(t *testing.T) {
	ix := New(0)
	ix.Upsert("v1", 40.0, -74.0)
	ix.Upsert("v1", 50.0, 10.0)

	if ids := ix.Near(40.0, -74.0, 5); len(ids) != 0 {
		t.Fatalf("stale position still indexed: %v", ids)
	}
	lat, lng, ok := ix.Position("v1")
	if !ok || lat != 50.0 || lng != 10.0 {
		t.Fatalf("position not replaced: %v %v %v", lat, lng, ok)
	}
}

func TestIndex_CellMembersIncludesNeighbors(t *testing.T) {
	ix := New(5)
	ix.Upsert("near", 40.001, -74.001)
	ix.Upsert("far", 41.0, -75.0)

	members := ix.CellMembers(40.0, -74.0)
	if _, ok := members["near"]; !ok {
		t.Fatalf("expected near vehicle in cell neighborhood, got %v", members)
	}
	if _, ok := members["far"]; ok {
		t.Fatalf("far vehicle should not appear in cell neighborhood")
	}
}

func TestIndex_Remove(t *testing.T) {
	ix := New(0)
	ix.Upsert("v1", 40.0, -74.0)
	ix.Remove("v1")
	ix.Remove("v1") // idempotent
	if _, _, ok := ix.Position("v1"); ok {
		t.Fatalf("v1 still present after remove")
	}
}
