package osinput

import "github.com/go-vgo/robotgo"

// PointerPosition reads the live OS pointer position, satisfying
// router.PointerQuery. Always reports ok=true: robotgo.Location never
// fails on a supported platform.
func PointerPosition() (x, y int32, ok bool) {
	px, py := robotgo.Location()
	return int32(px), int32(py), true
}
