// Package selection tracks which rendered peptide, if any, has its alignment
// detail expanded. At most one detail view is open at a time.
package selection

// State is either collapsed or expanded for exactly one peptide.
// The zero value is collapsed.
type State struct {
	expanded bool
	peptide  int
}

// Collapsed returns the state with no detail view open.
func Collapsed() State { return State{} }

// Expanded returns the state with peptide's detail view open.
func Expanded(peptide int) State { return State{expanded: true, peptide: peptide} }

// IsExpanded reports whether a detail view is open.
func (s State) IsExpanded() bool { return s.expanded }

// Peptide returns the expanded peptide index and true, or -1 and false when collapsed.
func (s State) Peptide() (int, bool) {
	if !s.expanded {
		return -1, false
	}
	return s.peptide, true
}

// Click handles a click on a rendered peptide. Clicking the active peptide
// collapses the view; clicking any other peptide expands it in place of the
// current one.
func (s State) Click(peptide int) State {
	if s.expanded && s.peptide == peptide {
		return Collapsed()
	}
	return Expanded(peptide)
}

// Close handles the close control shown on any peptide's detail view. Every
// close control returns to collapsed, whichever peptide it belongs to.
func (State) Close(int) State {
	return Collapsed()
}
