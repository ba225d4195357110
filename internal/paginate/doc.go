/*
Package paginate splits ordered sequences into numbered pages.

Example Usage:

	pages := paginate.Pages(items, paginate.Options{Limit: 2})
	for _, p := range pages {
		fmt.Println(p.Number, "of", p.Total, len(p.Items))
	}
*/
package paginate
