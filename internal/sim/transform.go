package sim

import "math"

// Coordinate convention throughout the simulator: X=right, Y=forward, Z=up.
// Azimuth is measured clockwise from +Y about the Z axis; elevation is
// measured upward from the XY plane about the X axis. Rotations compose as
// v' = Yaw(az) * Pitch(elev) * v (yaw-then-pitch), matching the grid
// construction in raygrid.go. Zenith and angular-noise pitch terms follow
// the same sign convention.

// DirectionFromAngles returns the unit vector for azimuth and elevation in
// degrees. Equivalent to a spherical-to-Cartesian conversion at unit range.
func DirectionFromAngles(azimuthDeg, elevationDeg float64) (x, y, z float64) {
	azimuthRad := azimuthDeg * math.Pi / 180.0
	elevationRad := elevationDeg * math.Pi / 180.0

	cosElevation := math.Cos(elevationRad)
	x = cosElevation * math.Sin(azimuthRad)
	y = cosElevation * math.Cos(azimuthRad)
	z = math.Sin(elevationRad)
	return
}

// RotateYaw rotates (x, y, z) about the Z axis by yawDeg degrees, clockwise
// from +Y when viewed from above (compass sense).
func RotateYaw(x, y, z, yawDeg float64) (rx, ry, rz float64) {
	rad := yawDeg * math.Pi / 180.0
	sin, cos := math.Sincos(rad)
	rx = x*cos + y*sin
	ry = y*cos - x*sin
	rz = z
	return
}

// RotatePitch rotates (x, y, z) about the X axis by pitchDeg degrees,
// positive lifting +Y toward +Z.
func RotatePitch(x, y, z, pitchDeg float64) (rx, ry, rz float64) {
	rad := pitchDeg * math.Pi / 180.0
	sin, cos := math.Sincos(rad)
	rx = x
	ry = y*cos - z*sin
	rz = y*sin + z*cos
	return
}

// Pose is the rigid transform from sensor frame to world frame.
// T is 4x4 row-major (m00..m03, m10..m13, m20..m23, m30..m33).
type Pose struct {
	SensorID string
	T        [16]float64
}

// IdentityPose returns a pose with the identity transform.
func IdentityPose(sensorID string) *Pose {
	return &Pose{
		SensorID: sensorID,
		T: [16]float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		},
	}
}

// Position returns the world-frame position of the sensor origin.
func (p *Pose) Position() (x, y, z float64) {
	return p.T[3], p.T[7], p.T[11]
}

// RotateDirection applies only the rotation part of the pose to a
// direction vector (no translation).
func (p *Pose) RotateDirection(x, y, z float64) (wx, wy, wz float64) {
	wx = p.T[0]*x + p.T[1]*y + p.T[2]*z
	wy = p.T[4]*x + p.T[5]*y + p.T[6]*z
	wz = p.T[8]*x + p.T[9]*y + p.T[10]*z
	return
}

// ApplyPose applies the full 4x4 row-major transform T to point (x,y,z).
func ApplyPose(x, y, z float64, T [16]float64) (wx, wy, wz float64) {
	wx = T[0]*x + T[1]*y + T[2]*z + T[3]
	wy = T[4]*x + T[5]*y + T[6]*z + T[7]
	wz = T[8]*x + T[9]*y + T[10]*z + T[11]
	return
}

// MatrixValidationTolerance is the tolerance for checking rotation matrix
// validity.
const MatrixValidationTolerance = 0.01

// IsValidTransformMatrix checks if a 4x4 matrix is a valid rigid transform:
// orthonormal rotation submatrix (det ~= 1) and last row [0 0 0 1].
func IsValidTransformMatrix(T [16]float64) bool {
	r00, r01, r02 := T[0], T[1], T[2]
	r10, r11, r12 := T[4], T[5], T[6]
	r20, r21, r22 := T[8], T[9], T[10]

	det := r00*(r11*r22-r12*r21) - r01*(r10*r22-r12*r20) + r02*(r10*r21-r11*r20)
	if math.Abs(det-1.0) > MatrixValidationTolerance {
		return false
	}

	if T[12] != 0 || T[13] != 0 || T[14] != 0 || math.Abs(T[15]-1.0) > 0.001 {
		return false
	}

	return true
}

// YawPose builds a pose at (px, py, pz) yawed by yawDeg about Z, using the
// same compass sense as RotateYaw.
func YawPose(sensorID string, px, py, pz, yawDeg float64) *Pose {
	rad := yawDeg * math.Pi / 180.0
	sin, cos := math.Sincos(rad)
	return &Pose{
		SensorID: sensorID,
		T: [16]float64{
			cos, sin, 0, px,
			-sin, cos, 0, py,
			0, 0, 1, pz,
			0, 0, 0, 1,
		},
	}
}
