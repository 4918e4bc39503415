package sim

import (
	"testing"
	"time"
)

func TestCollectGrantsValueExactlyOnce(t *testing.T) {
	w := newTestWorld()
	player := w.SpawnPlayer("runner", Vec3{})
	coin := w.SpawnCollectible(Vec3{X: 4}, "coin", 5)

	if !w.Collect(coin.ID, player.ID) {
		t.Fatalf("first collect refused")
	}
	got, _ := w.Player(player.ID)
	if got.Coins != 5 {
		t.Fatalf("expected 5 coins, got %d", got.Coins)
	}

	if w.Collect(coin.ID, player.ID) {
		t.Fatalf("second collect on the same id must be refused")
	}
	got, _ = w.Player(player.ID)
	if got.Coins != 5 {
		t.Fatalf("double collect must not grant twice, got %d coins", got.Coins)
	}

	records := w.Collectibles()
	if len(records) != 1 || !records[0].Collected || records[0].CollectedBy != player.ID {
		t.Fatalf("unexpected collectible state %+v", records)
	}
}

func TestCollectRefusedForOtherPlayerAfterClaim(t *testing.T) {
	w := newTestWorld()
	first := w.SpawnPlayer("first", Vec3{})
	second := w.SpawnPlayer("second", Vec3{})
	coin := w.SpawnCollectible(Vec3{}, "coin", 3)

	if !w.Collect(coin.ID, first.ID) {
		t.Fatalf("first collect refused")
	}
	if w.Collect(coin.ID, second.ID) {
		t.Fatalf("claimed collectible must refuse other players")
	}
	got, _ := w.Player(second.ID)
	if got.Coins != 0 {
		t.Fatalf("second player must not be granted, got %d coins", got.Coins)
	}
}

func TestCollectRefusedForDeadOrUnknownPlayer(t *testing.T) {
	w := newTestWorld()
	player := w.SpawnPlayer("runner", Vec3{})
	coin := w.SpawnCollectible(Vec3{}, "coin", 1)

	if w.Collect(coin.ID, 999) {
		t.Fatalf("unknown player must not collect")
	}

	w.KillPlayer(player.ID)
	if w.Collect(coin.ID, player.ID) {
		t.Fatalf("dead player must not collect")
	}
}

func TestSpawnCollectibleAssignsMonotonicIDs(t *testing.T) {
	w := newTestWorld()
	a := w.SpawnCollectible(Vec3{}, "coin", 1)
	b := w.SpawnCollectible(Vec3{}, "gem", 10)
	if a.ID == 0 || b.ID != a.ID+1 {
		t.Fatalf("expected monotonic ids, got %d then %d", a.ID, b.ID)
	}
}

func TestRegisterCollectibleRejectsDuplicateID(t *testing.T) {
	w := newTestWorld()
	if !w.RegisterCollectible(Collectible{ID: 7, Type: "coin", Value: 1}) {
		t.Fatalf("first register refused")
	}
	if w.RegisterCollectible(Collectible{ID: 7, Type: "coin", Value: 1}) {
		t.Fatalf("duplicate id must be rejected")
	}
	if len(w.Collectibles()) != 1 {
		t.Fatalf("duplicate register must not append")
	}

	// Registration advances the id sequence past the external id.
	next := w.SpawnCollectible(Vec3{}, "coin", 1)
	if next.ID <= 7 {
		t.Fatalf("spawned id must not collide with registered ids, got %d", next.ID)
	}
}

func TestDespawnCollectibleRemovesRecord(t *testing.T) {
	w := newTestWorld()
	coin := w.SpawnCollectible(Vec3{}, "coin", 1)
	if !w.DespawnCollectible(coin.ID) {
		t.Fatalf("despawn refused")
	}
	if w.DespawnCollectible(coin.ID) {
		t.Fatalf("second despawn must report missing")
	}
	if len(w.Collectibles()) != 0 {
		t.Fatalf("despawned collectible still present")
	}
}

func TestCollectRecordsClaimTick(t *testing.T) {
	w := newTestWorld()
	player := w.SpawnPlayer("runner", Vec3{})
	coin := w.SpawnCollectible(Vec3{}, "coin", 2)

	w.Step(1, time.Now(), nil)
	w.Step(2, time.Now(), nil)
	w.Collect(coin.ID, player.ID)

	records := w.Collectibles()
	if records[0].CollectedTick != 2 {
		t.Fatalf("expected claim tick 2, got %d", records[0].CollectedTick)
	}
}
