package protocol

// Constructors for each command kind. These are the only way the
// pipeline builds outbound messages, so every command on the wire is
// fully populated for its type.

// NewArmMove creates an arm command for one side.
func NewArmMove(side string, joints Joints, speed float64) (*Message, error) {
	return NewMessage(TypeArmMove, ArmMove{Side: side, Joints: joints, Speed: speed})
}

// NewHeadMove creates a head yaw/pitch command.
func NewHeadMove(yaw, pitch, speed float64) (*Message, error) {
	return NewMessage(TypeHeadMove, HeadMove{Yaw: yaw, Pitch: pitch, Speed: speed})
}

// NewHandMove creates a hand openness command.
func NewHandMove(side string, value float64) (*Message, error) {
	return NewMessage(TypeHandMove, HandMove{Side: side, Value: value})
}

// NewBaseMove creates a base velocity command.
func NewBaseMove(linear [2]float64, angular float64) (*Message, error) {
	return NewMessage(TypeBaseMove, BaseMove{Linear: linear, Angular: angular})
}

// NewPreMotion creates a named pre-set motion request.
func NewPreMotion(name string) (*Message, error) {
	return NewMessage(TypePreMotion, PreMotion{MotionName: name})
}

// NewPreMotionStop creates a pre-set motion cancel request.
func NewPreMotionStop() (*Message, error) {
	return NewMessage(TypePreMotionStop, nil)
}

// NewEmergencyStop creates an emergency stop. It carries no payload.
func NewEmergencyStop() (*Message, error) {
	return NewMessage(TypeEmergencyStop, nil)
}
