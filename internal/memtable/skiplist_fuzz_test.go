package memtable

import "testing"

// FuzzSkipListInsertContains checks that every inserted key is
// immediately found, for an arbitrary sequence of up to 3 keys. A fresh
// list is built per fuzz case (unlike inserting straight into a shared
// list across cases) so that corpus entries that happen to repeat a
// byte string don't trip the duplicate-key panic.
func FuzzSkipListInsertContains(f *testing.F) {
	f.Add([]byte("key1"), []byte("key2"), []byte("key3"))
	f.Add([]byte(""), []byte{0x00, 0x01, 0x02}, []byte{0xFF, 0xFE, 0xFD})

	f.Fuzz(func(t *testing.T, k1, k2, k3 []byte) {
		sl, err := New(Options[[]byte]{Comparator: BytewiseComparator})
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		seen := make(map[string]bool)
		for _, k := range [][]byte{k1, k2, k3} {
			if seen[string(k)] {
				continue
			}
			seen[string(k)] = true
			sl.Insert(k)
			if !sl.Contains(k) {
				t.Fatalf("just inserted %v but Contains returned false", k)
			}
		}
		if int64(len(seen)) != sl.Count() {
			t.Fatalf("Count() = %d, want %d", sl.Count(), len(seen))
		}
	})
}

// FuzzSkipListIteratorConsistency checks that a full forward iteration
// visits exactly the inserted keys, strictly ascending.
func FuzzSkipListIteratorConsistency(f *testing.F) {
	f.Add([]byte("a"), []byte("b"), []byte("c"))
	f.Add([]byte{0x00}, []byte{0x01}, []byte{0x02})

	f.Fuzz(func(t *testing.T, k1, k2, k3 []byte) {
		sl, err := New(Options[[]byte]{Comparator: BytewiseComparator})
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		seen := make(map[string]bool)
		for _, k := range [][]byte{k1, k2, k3} {
			if !seen[string(k)] {
				sl.Insert(k)
				seen[string(k)] = true
			}
		}

		it := sl.NewIterator()
		it.SeekToFirst()
		var prev []byte
		count := 0
		for it.Valid() {
			key := it.Key()
			if prev != nil && BytewiseComparator(prev, key) >= 0 {
				t.Fatalf("keys not in ascending order: %v >= %v", prev, key)
			}
			prev = append([]byte(nil), key...)
			count++
			it.Next()
		}
		if count != len(seen) {
			t.Fatalf("iterated %d entries, want %d", count, len(seen))
		}
	})
}
