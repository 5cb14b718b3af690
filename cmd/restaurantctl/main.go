// Command restaurantctl administers the restaurant store: seeding sample data,
// clearing reviews and repairing cached ratings.
package main

func main() {
	Execute()
}
