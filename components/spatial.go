package components

// Position represents the robot's position in the arena, in centimetres.
type Position struct {
	X, Y float64
}

// Rotation represents the robot's heading and angular velocity.
type Rotation struct {
	Heading float64 // radians
	AngVel  float64 // radians per second
}

// Pose bundles position and rotation.
type Pose struct {
	Position
	Rotation
}
