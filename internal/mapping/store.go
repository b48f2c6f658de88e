package mapping

// Store is a read-only flat field store. Get never fails: an unknown path
// simply reports ok == false.
type Store interface {
	Get(path string) (value string, ok bool)
}

// MapStore is a Store over an in-memory map, typically form fields keyed by
// their fully qualified field name.
type MapStore map[string]string

func (m MapStore) Get(path string) (string, bool) {
	v, ok := m[path]
	return v, ok
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(path string) (string, bool)

func (f StoreFunc) Get(path string) (string, bool) { return f(path) }

type emptyStore struct{}

func (emptyStore) Get(string) (string, bool) { return "", false }
