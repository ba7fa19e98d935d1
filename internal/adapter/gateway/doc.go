// Package gateway implements domain.ConnectionSupervisor on top of a protocol gateway
// sidecar. Each session holds one websocket; the first frame answers the open or pair
// request and every later frame is an event for the session.
package gateway
