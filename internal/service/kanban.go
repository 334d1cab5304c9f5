package service

import "github.com/msomdec/taskboard/internal/domain"

// Rect is a screen region in layout coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Column is one lane of the kanban board.
type Column struct {
	Title  string
	Status domain.TaskStatus
	Bounds Rect
}

// Board is the kanban layout used to resolve drag-and-drop targets.
type Board struct {
	Columns []Column
}

var columnTitles = map[domain.TaskStatus]string{
	domain.StatusTodo:       "To Do",
	domain.StatusInProgress: "In Progress",
	domain.StatusDone:       "Done",
}

// ColumnTitle returns the display title of a status column.
func ColumnTitle(status domain.TaskStatus) string {
	if title, ok := columnTitles[status]; ok {
		return title
	}
	return string(status)
}

// NewBoard lays the three status columns side by side across width, each
// spanning the full height.
func NewBoard(width, height float64) Board {
	colWidth := width / float64(len(domain.Statuses))
	board := Board{Columns: make([]Column, 0, len(domain.Statuses))}
	for i, status := range domain.Statuses {
		board.Columns = append(board.Columns, Column{
			Title:  ColumnTitle(status),
			Status: status,
			Bounds: Rect{X: float64(i) * colWidth, Y: 0, Width: colWidth, Height: height},
		})
	}
	return board
}

// ColumnAt returns the status of the first column containing the point.
func (b Board) ColumnAt(x, y float64) (domain.TaskStatus, bool) {
	for _, c := range b.Columns {
		if c.Bounds.Contains(x, y) {
			return c.Status, true
		}
	}
	return "", false
}
