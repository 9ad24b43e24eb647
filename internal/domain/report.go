package domain

import "time"

// Action is the action taken for one mod.
type Action string

const (
	// ActionUpdated means a new file was (or, in a dry run, would be) staged.
	ActionUpdated Action = "updated"
	// ActionSkipped means nothing needed to change, or no compatible version exists.
	ActionSkipped Action = "skipped"
	// ActionFailed means an unexpected error stopped processing of the mod.
	ActionFailed Action = "failed"
	// ActionUnresolved means the file could not be mapped to a catalog project.
	ActionUnresolved Action = "unresolved"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// Outcome is the reported result for one mod.
type Outcome struct {
	// Identity is the project slug, or the local filename when unresolved.
	Identity string `json:"identity"`
	Title    string `json:"title"`
	Action   Action `json:"action"`
	Reason   string `json:"reason,omitempty"`
	// Version is the selected version number, if any.
	Version string `json:"version,omitempty"`
	// LocalFile is the original filename, empty for dependencies.
	LocalFile string `json:"local_file,omitempty"`
	// NewFile is the filename that was (or would be) written.
	NewFile string `json:"new_file,omitempty"`
	// Dependency marks outcomes that came from dependency expansion.
	Dependency bool `json:"dependency,omitempty"`
	// Origin is the project that required this dependency.
	Origin string `json:"origin,omitempty"`
}

// RunReport is the ordered sequence of per-mod outcomes of one run.
type RunReport struct {
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Duration    time.Duration `json:"duration"`
	DryRun      bool          `json:"dry_run"`
	GameVersion string        `json:"game_version"`
	Loader      string        `json:"loader"`
	// BackupDir is the backup folder created during the run, if any.
	BackupDir string    `json:"backup_dir,omitempty"`
	Outcomes  []Outcome `json:"outcomes"`
}

// NewRunReport creates a new RunReport.
func NewRunReport(gameVersion, loader string, dryRun bool) *RunReport {
	return &RunReport{
		StartTime:   time.Now(),
		DryRun:      dryRun,
		GameVersion: gameVersion,
		Loader:      loader,
		Outcomes:    make([]Outcome, 0),
	}
}

// Add appends an outcome.
func (r *RunReport) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Complete marks the run as complete.
func (r *RunReport) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Count returns the number of outcomes with the given action.
func (r *RunReport) Count(a Action) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == a {
			n++
		}
	}
	return n
}

// HasFailures reports whether any mod failed.
func (r *RunReport) HasFailures() bool {
	return r.Count(ActionFailed) > 0
}

// Find returns the first outcome with the given identity.
func (r *RunReport) Find(identity string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Identity == identity {
			return o, true
		}
	}
	return Outcome{}, false
}
