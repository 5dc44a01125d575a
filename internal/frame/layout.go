package frame

import (
	"math"

	"github.com/san-kum/branchwave/internal/constraint"
	"github.com/san-kum/branchwave/internal/member"
)

// Point is a position in the plane of the frame.
type Point struct {
	X, Y float64
}

func (p Point) add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) scale(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) rotate(theta float64) Point {
	c, s := math.Cos(theta), math.Sin(theta)
	return Point{c*p.X - s*p.Y, s*p.X + c*p.Y}
}

// Placement locates a member in the plane: its near end and unit axis.
type Placement struct {
	Member int
	Start  Point
	Dir    Point
	Length float64
}

// At returns the point at near-end distance x moved by axial and transverse
// displacements along the member axes.
func (p Placement) At(x, axial, transverse float64) Point {
	normal := Point{-p.Dir.Y, p.Dir.X}
	return p.Start.add(p.Dir.scale(x + axial)).add(normal.scale(transverse))
}

// End returns the far end of the member.
func (p Placement) End() Point {
	return p.Start.add(p.Dir.scale(p.Length))
}

// Layout places every member in the plane by walking the joints from member 0,
// which starts at the origin along +x. Members not reachable through joints start
// a new chain at the origin.
func (f *Frame) Layout() ([]Placement, error) {
	placed := make([]*Placement, len(f.members))
	for root := range f.members {
		if placed[root] != nil {
			continue
		}
		placed[root] = &Placement{Member: root, Dir: Point{1, 0}, Length: f.members[root].Length()}
		queue := []int{root}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for _, cid := range f.members[id].Constraints() {
				c := f.constraints[cid]
				if c.Kind != constraint.TwoMemberJoint {
					continue
				}
				other, err := f.placeAcross(c, id, placed)
				if err != nil {
					return nil, err
				}
				if other >= 0 {
					queue = append(queue, other)
				}
			}
		}
	}

	out := make([]Placement, len(placed))
	for i, p := range placed {
		out[i] = *p
	}
	return out, nil
}

// placeAcross places the member on the other side of joint c from the placed
// member id, returning its id or -1 when it was already placed.
func (f *Frame) placeAcross(c *constraint.Constraint, id int, placed []*Placement) (int, error) {
	m1, m2 := c.Members[0], c.Members[1]
	first := m1.ID() == id
	other := m2
	if !first {
		other = m1
	}
	if placed[other.ID()] != nil {
		return -1, nil
	}

	here := placed[id]
	self := f.members[id]
	end, err := self.End(c.ID)
	if err != nil {
		return -1, err
	}
	joint := here.Start
	if end == member.Far {
		joint = here.End()
	}

	otherEnd, err := other.End(c.ID)
	if err != nil {
		return -1, err
	}

	// member 1 points into the joint, member 2 points away from it
	var dir Point
	if first {
		in := here.Dir
		if end == member.Near {
			in = in.scale(-1)
		}
		dir = in.rotate(c.Theta)
		if otherEnd == member.Far {
			dir = dir.scale(-1)
		}
	} else {
		out := here.Dir
		if end == member.Far {
			out = out.scale(-1)
		}
		dir = out.rotate(-c.Theta)
		if otherEnd == member.Near {
			dir = dir.scale(-1)
		}
	}

	p := &Placement{Member: other.ID(), Dir: dir, Length: other.Length(), Start: joint}
	if otherEnd == member.Far {
		p.Start = joint.add(dir.scale(-other.Length()))
	}
	placed[other.ID()] = p
	return other.ID(), nil
}
