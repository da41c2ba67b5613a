package input

// Capture tracks which pointer owns the active gesture of each route.
// A second pointer of the same route is ignored until the owner lifts.
type Capture struct {
	owners map[Route]int
}

func NewCapture() *Capture {
	return &Capture{owners: make(map[Route]int)}
}

// Acquire gives route r to pointer id if it is free or already owned by id.
func (c *Capture) Acquire(r Route, id int) bool {
	owner, held := c.owners[r]
	if held && owner != id {
		return false
	}
	c.owners[r] = id
	return true
}

// Owns reports whether pointer id holds route r.
func (c *Capture) Owns(r Route, id int) bool {
	owner, held := c.owners[r]
	return held && owner == id
}

// Release frees route r if id holds it and reports whether it did.
func (c *Capture) Release(r Route, id int) bool {
	if !c.Owns(r, id) {
		return false
	}
	delete(c.owners, r)
	return true
}

// Reset drops all ownership, e.g. when the surface is torn down.
func (c *Capture) Reset() {
	c.owners = make(map[Route]int)
}
