// Package http provides HTTP handlers and middleware for the meeting room API.
//
// The router exposes the following endpoints:
//   - GET /meeting-rooms/room-category: the room catalog as
//     [{"room_code","room_name","capacity"}] ordered by code.
//   - GET /meeting-rooms/reservations/daily?roomCd=A101&date=20250506: reservations of
//     one room starting on that date. The date also accepts 2025-05-06.
//   - GET /meeting-rooms/reservations/monthly?roomCd=A101&date=202505: reservations of
//     one room starting in that month. The date also accepts 2025-05.
//   - POST /meeting-rooms/reservations: books a room. Body:
//     {"user_id","room_code","start_time","end_time"}. Responds 201 with the
//     `reservationDTO` defined in reservation_handler.go.
//   - PUT /meeting-rooms/reservations/{id}: moves a reservation on behalf of its owner.
//     Same body as POST; responds 200.
//   - DELETE /meeting-rooms/reservations/{id}?userId=...: cancels a reservation. When
//     userId is present it must name the owner. Responds 204.
//   - GET /healthz: {"status":"ok"} once the database answers a ping.
//
// Times on the wire are wall-clock "YYYY-MM-DD HH:mm" without an offset and are read
// in the service's configured zone. Errors are returned as
// {"error_code","message","errors"}.
package http
