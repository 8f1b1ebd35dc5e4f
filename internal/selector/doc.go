// Package selector decides which page of a domain is classified.
//
// Two strategies exist:
//
//	about-primary     probe the about-page candidates in order and classify the
//	                  first valid one; fall back to the homepage when none is valid
//	homepage-primary  classify the homepage; a valid about page is extracted as
//	                  supplementary content only
//
// An about candidate is valid when its response status is below 400, its final
// URL still contains "about" (a redirect to the homepage does not count) and
// its body text is longer than 100 characters. Candidate failures are logged
// and skipped. A homepage failure fails the whole domain.
package selector
