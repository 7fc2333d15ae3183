// Package listing calls the property, enquiry and site-visit endpoints of the
// brokerage backend through an apiclient.Client.
//
// Public reads and lead capture go out without a token; anything that touches
// a user's own listings or leads needs the session token:
//
//	svc := listing.New(client, listing.WithLogger(log))
//
//	data, err := svc.Properties(ctx, listing.Page{Page: 1, Limit: 20})
//	data, err = svc.FilterProperties(ctx, listing.Filter{"city": "Pune", "bhk": []int{2, 3}})
//
//	_, err = svc.CreatePropertyEnquiry(ctx, propertyID, listing.Enquiry{
//		Name:     "Asha Rao",
//		MobileNo: "9876543210",
//		Email:    "asha@example.com",
//	})
//	if errors.Is(err, listing.ErrInvalidMobile) {
//		// rejected before any request was made
//	}
//
// Exports return the full *apiclient.Response so callers can stream CSV or
// read JSON as the backend sends it.
package listing
