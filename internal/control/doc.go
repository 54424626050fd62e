// Package control evaluates device policies against cached telemetry
// and issues actuator commands.
//
// The control loop runs independently of polling: it reads the latest
// cached readings, asks each policy whether an actuation is needed, and
// sends the resulting commands through the vendor gateway. It never
// touches the database.
//
// Failure Isolation:
//   - A device missing the readings its policy needs is skipped
//     (logged once until the data appears)
//   - A failed command send is logged and does not affect other devices
package control
