package coherence

// LocInfo is one partition's answer to "where could this address live"
// : a fully-associative victim partition
// reports the whole way range; a set-associative partition reports the
// single set the index function picked and its way range.
type LocInfo struct {
	CacheName string
	Partition uint32
	Set uint32
	WayLo uint32
	WayHi uint32 // exclusive
}
