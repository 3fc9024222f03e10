package game

// Kind selects the payload of an Action.
type Kind string

const (
	KindThrow   Kind = "throw"
	KindCommit  Kind = "commit"
	KindScore   Kind = "score"
	KindHotHand Kind = "hot"
	KindRound   Kind = "round"
	KindBid     Kind = "bid"
	KindResult  Kind = "result"
	KindFill    Kind = "fill"
)

// Ring is the board area a dart landed in.
type Ring string

const (
	RingSingle    Ring = "single"
	RingDouble    Ring = "double"
	RingTriple    Ring = "triple"
	RingBull      Ring = "bull"
	RingOuterBull Ring = "bull25"
	RingMiss      Ring = "miss"
)

// IsDouble reports whether the ring counts as a double for double-in and
// double-out rules. The inner bull does.
func (r Ring) IsDouble() bool { return r == RingDouble || r == RingBull }

// Throw is one dart. Value and Marks are filled in by the engine.
type Throw struct {
	Sector       int    `json:"sector"`
	Ring         Ring   `json:"ring"`
	Value        int    `json:"value"`
	Target       string `json:"target,omitempty"`
	Marks        int    `json:"marks,omitempty"`
	DoubleInMiss bool   `json:"doubleInMiss,omitempty"`
}

// Action is a raw player input. Only the fields relevant to Kind are read;
// mandatory numbers are pointers so a missing value is rejected instead of
// being read as zero.
type Action struct {
	Kind   Kind           `json:"kind"`
	Throw  *Throw         `json:"throw,omitempty"`
	Points *int           `json:"points,omitempty"`
	Scores map[string]int `json:"scores,omitempty"`
	Caller string         `json:"caller,omitempty"`
	Bid    *int           `json:"bid,omitempty"`
	Won    *int           `json:"won,omitempty"`
	Bonus  int            `json:"bonus,omitempty"`
	Cell   string         `json:"cell,omitempty"`
	Value  *int           `json:"value,omitempty"`
	Cross  bool           `json:"cross,omitempty"`
}
