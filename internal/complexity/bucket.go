package complexity

// Bucket is the coarse complexity level reported per target.
type Bucket string

const (
	BucketLow     Bucket = "low"
	BucketMedium  Bucket = "medium"
	BucketHigh    Bucket = "high"
	BucketUnknown Bucket = "unknown"
)

// Buckets lists the levels in ascending order.
var Buckets = []Bucket{BucketLow, BucketMedium, BucketHigh, BucketUnknown}

// Upper bounds (inclusive) of the low and medium buckets, in the
// cyclomatic scale used by gocyclo.
const (
	LowMax    = 10
	MediumMax = 20
)

// Classify buckets the highest function complexity of a target. A target with
// no analyzable function is unknown.
func Classify(maxCyclomatic int) Bucket {
	switch {
	case maxCyclomatic <= 0:
		return BucketUnknown
	case maxCyclomatic <= LowMax:
		return BucketLow
	case maxCyclomatic <= MediumMax:
		return BucketMedium
	default:
		return BucketHigh
	}
}
