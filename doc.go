// Package linkedintoken implements a LinkedIn access-token authentication
// strategy for delegated sign-in.
//
// Unlike a full OAuth authorization-code flow, this strategy assumes the
// client application has already obtained a LinkedIn OAuth2 access token
// (for example through a mobile or single-page SDK) and submits it to the
// backend for verification. The strategy exchanges the token for the user's
// profile at the LinkedIn API, normalizes the response into a stable
// cross-provider shape, and hands the result to an application-supplied
// verification callback.
//
// The host authentication middleware supplies the inbound request and a
// Responder with three channels: Success for an authenticated user, Fail for
// recoverable caller mistakes (missing token, verification declined), and
// Error for provider or system faults. The strategy never writes an HTTP
// response itself.
//
// Basic usage:
//
//	strategy, err := linkedintoken.New(&linkedintoken.Config{
//	    ClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
//	    ClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
//	    Scope:        []string{"r_basicprofile", "r_emailaddress"},
//	}, func(ctx context.Context, creds linkedintoken.Credentials, p *profile.Profile) (any, linkedintoken.Info, error) {
//	    user, err := users.FindOrCreate(ctx, p.ID, p.Emails)
//	    if err != nil {
//	        return nil, linkedintoken.Info{}, err
//	    }
//	    return user, linkedintoken.Info{}, nil
//	})
//
// Profile data flows through once per authentication attempt and is never
// stored; token acquisition and refresh are out of scope.
package linkedintoken
