package entities

type Institution struct {
	ID   uint64
	Name string
}

type SparePart struct {
	ID   uint64
	Name string
}

type FailureType struct {
	ID   uint64
	Name string
}
