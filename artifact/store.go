package artifact

// Store is the minimal object-storage contract: raw bytes addressed by an
// owner (typically an actor id) and an artifact id.
type Store interface {
	Save(ownerID, artifactID string, data []byte) error
	Get(ownerID, artifactID string) ([]byte, error)
	List(ownerID string) ([]string, error)
	Delete(ownerID, artifactID string) error
}
