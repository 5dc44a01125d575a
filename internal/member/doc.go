// Package member implements the wave model of a single frame member.
//
// A member is a uniform Euler-Bernoulli beam of square cross-section with an axial
// bar degree of freedom. At each end it carries two amplitude vectors, one per
// direction of travel, and each vector holds three channels:
//
//	[bending propagating, bending evanescent, longitudinal]
//
// The end owned by the lower constraint id is the near end (station a), the other
// is the far end (station b). Plus waves travel from a to b. Point loads split the
// member into segments with their own stations g (before the load) and h (after).
package member
