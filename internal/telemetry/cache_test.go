package telemetry

import (
	"sync"
	"testing"
	"time"
)

func TestCacheEmptyReturnsNothing(t *testing.T) {
	cache := NewReadingCache()

	if _, ok := cache.Get("dev1", KindTemperature); ok {
		t.Error("Get() on empty cache returned an entry")
	}
	if len(cache.Snapshot()) != 0 {
		t.Error("Snapshot() on empty cache is not empty")
	}
	if len(cache.GetDevice("dev1")) != 0 {
		t.Error("GetDevice() on empty cache is not empty")
	}
}

func TestCacheUpdateAndGet(t *testing.T) {
	cache := NewReadingCache()
	now := time.Now().UTC()

	if !cache.Update("dev1", KindTemperature, NumberValue(21.45), now) {
		t.Fatal("first Update() rejected")
	}

	entry, ok := cache.Get("dev1", KindTemperature)
	if !ok {
		t.Fatal("Get() missing after Update()")
	}
	if entry.Value.Number != 21.45 {
		t.Errorf("Get() value = %v, want 21.45", entry.Value.Number)
	}
	if !entry.ObservedAt.Equal(now) {
		t.Errorf("Get() observed_at = %v, want %v", entry.ObservedAt, now)
	}
}

func TestCacheNewerTimestampReplaces(t *testing.T) {
	cache := NewReadingCache()
	t1 := time.Now().UTC()
	t2 := t1.Add(time.Minute)

	cache.Update("dev1", KindTemperature, NumberValue(20), t1)
	if !cache.Update("dev1", KindTemperature, NumberValue(25), t2) {
		t.Fatal("newer Update() rejected")
	}

	entry, _ := cache.Get("dev1", KindTemperature)
	if entry.Value.Number != 25 {
		t.Errorf("value = %v, want 25", entry.Value.Number)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestCacheRejectsOutOfOrder(t *testing.T) {
	cache := NewReadingCache()
	t1 := time.Now().UTC()

	cache.Update("dev1", KindTemperature, NumberValue(21.45), t1)

	// Older timestamp: discarded.
	if cache.Update("dev1", KindTemperature, NumberValue(19), t1.Add(-time.Second)) {
		t.Error("Update() with older timestamp accepted")
	}
	// Equal timestamp: not strictly newer, discarded.
	if cache.Update("dev1", KindTemperature, NumberValue(19), t1) {
		t.Error("Update() with equal timestamp accepted")
	}

	entry, _ := cache.Get("dev1", KindTemperature)
	if entry.Value.Number != 21.45 || !entry.ObservedAt.Equal(t1) {
		t.Errorf("entry changed: %+v", entry)
	}
}

func TestCacheMonotonicity(t *testing.T) {
	cache := NewReadingCache()
	base := time.Now().UTC()

	// Arrival order deliberately scrambled; the surviving entry must carry
	// the maximum accepted timestamp.
	offsets := []int{3, 1, 4, 2, 9, 5, 9, 0}
	for _, off := range offsets {
		cache.Update("dev1", KindHumidity, NumberValue(float64(off)), base.Add(time.Duration(off)*time.Second))
	}

	entry, _ := cache.Get("dev1", KindHumidity)
	if entry.Value.Number != 9 {
		t.Errorf("value = %v, want 9", entry.Value.Number)
	}
	if want := base.Add(9 * time.Second); !entry.ObservedAt.Equal(want) {
		t.Errorf("observed_at = %v, want %v", entry.ObservedAt, want)
	}
}

func TestCacheSeparateKeys(t *testing.T) {
	cache := NewReadingCache()
	now := time.Now().UTC()

	cache.Update("dev1", KindTemperature, NumberValue(21.45), now)
	cache.Update("dev1", KindHumidity, NumberValue(60.5), now)
	cache.Update("dev2", KindTemperature, NumberValue(18), now)

	if cache.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", cache.Len())
	}

	dev1 := cache.GetDevice("dev1")
	if len(dev1) != 2 {
		t.Errorf("GetDevice(dev1) returned %d entries, want 2", len(dev1))
	}
	if dev1[KindTemperature].Value.Number != 21.45 {
		t.Errorf("dev1 temperature = %v", dev1[KindTemperature].Value)
	}
}

func TestCacheSnapshotAccumulates(t *testing.T) {
	cache := NewReadingCache()
	t1 := time.Now().UTC()
	t2 := t1.Add(time.Minute)

	// First cycle: temperature and door state at T1.
	cache.Update("D1", KindTemperature, NumberValue(21.45), t1)
	cache.Update("D1", KindDoorOpen, BoolValue(true), t1)

	// Second cycle: only a relay reading at T2.
	cache.Update("D1", KindRelayState, BoolValue(false), t2)

	snapshot := cache.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("Snapshot() has %d entries, want 3", len(snapshot))
	}

	temp := snapshot[Key{DeviceID: "D1", Kind: KindTemperature}]
	if temp.Value.Number != 21.45 || !temp.ObservedAt.Equal(t1) {
		t.Errorf("temperature entry changed: %+v", temp)
	}
	door := snapshot[Key{DeviceID: "D1", Kind: KindDoorOpen}]
	if !door.Value.Bool || !door.ObservedAt.Equal(t1) {
		t.Errorf("door entry changed: %+v", door)
	}
	relay := snapshot[Key{DeviceID: "D1", Kind: KindRelayState}]
	if relay.Value.Bool || !relay.ObservedAt.Equal(t2) {
		t.Errorf("relay entry wrong: %+v", relay)
	}
}

func TestCacheConcurrentReadersSingleWriter(t *testing.T) {
	cache := NewReadingCache()
	base := time.Now().UTC()

	const writes = 1000
	var wg sync.WaitGroup

	// Single writer: monotonically increasing timestamps where value and
	// timestamp always move together.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range writes {
			ts := base.Add(time.Duration(i) * time.Millisecond)
			cache.Update("dev1", KindPowerConsumption, NumberValue(float64(i)), ts)
		}
	}()

	// Readers verify no torn (value, timestamp) pairs are ever visible.
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range writes {
				entry, ok := cache.Get("dev1", KindPowerConsumption)
				if !ok {
					continue
				}
				wantTS := base.Add(time.Duration(entry.Value.Number) * time.Millisecond)
				if !entry.ObservedAt.Equal(wantTS) {
					t.Errorf("torn read: value %v with timestamp %v", entry.Value.Number, entry.ObservedAt)
					return
				}
			}
		}()
	}

	wg.Wait()
}
