// Package dmxnet transmits DMX512 channel data over IP networks using the
// Art-Net v4 protocol.
//
// A Sender owns one UDP transport and the per-universe channel state. Writes
// go through SetChannel/SetChannels; changed data is transmitted under a
// 25 ms per-universe throttle, and a periodic keep-alive refresh keeps
// receivers alive when the data goes quiet. DiscoverNodes broadcasts an
// ArtPoll and collects the replying nodes.
package dmxnet
