/*
Package fees computes fees on a payment and distributes them among recipients.

The package is pure: configuration, the incoming payment and the decay clock are
passed in, and everything that must change afterwards is returned as
instructions. Nothing here touches storage or the network.

Usage:

	entries := []fees.RateEntry{
	    {Rate: fees.FlatRate(20, "uusd"), IsAdditive: true, Recipients: []fees.Recipient{{Address: "a"}}},
	    {Rate: fees.Percent(10), Recipients: []fees.Recipient{{Address: "b"}}},
	}
	res, err := fees.Distribute(entries, fees.NativeFunds(100, "uusd"), env, lastTimestamp)

Fee shapes:

  - Flat: a fixed coin in its own denomination, optionally decaying over time
    through a Threshold and floored at Threshold.Value.
  - Percent: a fraction in (0, 1] of the payment, rounded up in favour of the
    recipient whenever truncation would leave the payer a fractional unit.

Error Handling:

  - Validation: ErrInvalidRate, ErrInvalidThreshold, ErrNoRecipients,
    ErrInvalidRecipient, ErrInvalidFunds
  - Temporal: ErrInvalidTimestamp
  - Arithmetic: ErrOverflow, ErrUnderflow, ErrInsufficientFunds
*/
package fees
