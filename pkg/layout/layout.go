// Package layout defines the geometric value types shared by the layout
// engines. All coordinates live in one abstract 2D space; consumers decide
// what a unit means (typically pixels).
package layout

// Point is a position in the abstract coordinate space.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Circle is a placed node in a circle-packing layout.
type Circle struct {
	Center Point   `json:"center" bson:"center"`
	Radius float64 `json:"radius" bson:"radius"`
}

// Box is a placed node in a layered tree layout. X and Y locate the box
// center; Width and Height are the full extents.
type Box struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Left returns the left edge of the box.
func (b Box) Left() float64 { return b.X - b.Width/2 }

// Right returns the right edge of the box.
func (b Box) Right() float64 { return b.X + b.Width/2 }

// Top returns the upper edge of the box (smaller y renders higher).
func (b Box) Top() float64 { return b.Y - b.Height/2 }

// Bottom returns the lower edge of the box.
func (b Box) Bottom() float64 { return b.Y + b.Height/2 }
