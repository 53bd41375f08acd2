package acd

// Record is one element of the flattened description stream.
type Record interface {
	// Pos returns the 1-based line that introduced the record.
	Pos() int
	record()
}

// CharacterRecord carries the agent-wide settings.
type CharacterRecord struct {
	Name   string
	Width  int
	Height int
	// DefaultDuration is in description units (1/100 s).
	DefaultDuration int
	Line            int
}

// AnimationRecord opens an animation; frames follow until AnimationEndRecord.
type AnimationRecord struct {
	Name            string
	TransitionType  int
	ReturnAnimation string
	Line            int
}

// AnimationEndRecord closes the most recent AnimationRecord.
type AnimationEndRecord struct {
	Name string
	Line int
}

// ImageRef is one image layer of a frame.
type ImageRef struct {
	Filename string
	OffsetX  int
	OffsetY  int
	Line     int
}

// FrameRecord describes one frame. Values keep description semantics:
// Duration is in 1/100 s and ExitBranch is 1-based with 0 meaning none.
type FrameRecord struct {
	Duration   *int
	ExitBranch int
	Sounds     []string
	Images     []ImageRef
	Line       int
}

// BranchRecord is a probabilistic branch of the preceding frame. Target is
// 1-based.
type BranchRecord struct {
	Target      int
	Probability int
	Line        int
}

// StateRecord groups animations under a state name.
type StateRecord struct {
	Name       string
	Animations []string
	Line       int
}

func (r CharacterRecord) Pos() int    { return r.Line }
func (r AnimationRecord) Pos() int    { return r.Line }
func (r AnimationEndRecord) Pos() int { return r.Line }
func (r FrameRecord) Pos() int        { return r.Line }
func (r BranchRecord) Pos() int       { return r.Line }
func (r StateRecord) Pos() int        { return r.Line }

func (CharacterRecord) record()    {}
func (AnimationRecord) record()    {}
func (AnimationEndRecord) record() {}
func (FrameRecord) record()        {}
func (BranchRecord) record()       {}
func (StateRecord) record()        {}
