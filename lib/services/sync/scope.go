package sync

// Scope is a bitmask of independently triggerable sync units.
type Scope int

const (
	ScopeNone               Scope = 0
	ScopeCollectionDownload Scope = 1
	ScopeCollectionUpload   Scope = 1 << 1
	ScopeBuddies            Scope = 1 << 2
	ScopePlaysDownload      Scope = 1 << 3
	ScopePlaysUpload        Scope = 1 << 4
	ScopeGames              Scope = 1 << 5

	ScopeCollection = ScopeCollectionDownload | ScopeCollectionUpload
	ScopePlays      = ScopePlaysDownload | ScopePlaysUpload
	ScopeAll        = ScopeCollection | ScopeBuddies | ScopePlays | ScopeGames
)

func (s Scope) Has(flag Scope) bool {
	return s&flag == flag
}

func (s Scope) String() string {
	switch s {
	case ScopeNone:
		return "none"
	case ScopeCollectionDownload:
		return "collection_download"
	case ScopeCollectionUpload:
		return "collection_upload"
	case ScopeBuddies:
		return "buddies"
	case ScopePlaysDownload:
		return "plays_download"
	case ScopePlaysUpload:
		return "plays_upload"
	case ScopeGames:
		return "games"
	case ScopeCollection:
		return "collection"
	case ScopePlays:
		return "plays"
	case ScopeAll:
		return "all"
	default:
		return "composite"
	}
}
